package protocol

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

var clearCmd = &cobra.Command{
	Use:   "clear-destination",
	Short: "Olake clear command to clear destination data and state for selected streams",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if destinationConfigPath == notSet {
			return fmt.Errorf("--destination not passed")
		} else if streamsPath == "" {
			return fmt.Errorf("--streams not passed")
		}

		destinationConfig = &types.WriterConfig{}
		if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
			return err
		}

		catalog = &types.Catalog{}
		if err := utils.UnmarshalFile(streamsPath, catalog, false); err != nil {
			return err
		}

		state = types.NewState()
		if statePath != "" {
			if err := utils.UnmarshalFile(statePath, state, false); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		selected, err := types.IdentifySelectedStreams(catalog, nil, state)
		if err != nil {
			return fmt.Errorf("failed to get selected streams for clearing: %w", err)
		}
		dropStreams := selected.All()
		if len(dropStreams) == 0 {
			logger.Infof("No streams selected for clearing")
			return nil
		}

		// 1. Clear state for selected streams
		connector.SetupState(state)
		newState, err := connector.ClearState(dropStreams)
		if err != nil {
			return fmt.Errorf("error clearing state: %w", err)
		}
		logger.Infof("State for selected streams cleared successfully.")
		connector.SetupState(newState)

		// 2. Drop streams from destination
		streamIDs := make([]string, 0, len(dropStreams))
		for _, stream := range dropStreams {
			streamIDs = append(streamIDs, stream.ID())
		}
		if _, err := destination.NewWriterPool(ctx, destinationConfig, streamIDs); err != nil {
			return fmt.Errorf("failed to initialize writer pool for dropping streams: %w", err)
		}
		logger.Infof("Successfully cleared destination data for selected streams.")

		newState.LogState()
		return nil
	},
}

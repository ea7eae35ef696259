package protocol

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/telemetry"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

// syncCmd runs the selected streams into the destination and persists state
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Olake sync command",
	Long:  `Sync command reads the selected streams from Ticketmatic, writes them to the destination and saves the bookmarks in the state file`,
	Example: `
// Base command:
olake-ticketmatic sync --config path/to/config --destination path/to/destination/config --streams path/to/streams

// With State:
olake-ticketmatic sync --config path/to/config --destination path/to/destination/config --streams path/to/streams --state /path/to/state
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == notSet {
			return fmt.Errorf("--config not passed")
		} else if destinationConfigPath == notSet {
			return fmt.Errorf("--destination not passed")
		} else if streamsPath == "" {
			return fmt.Errorf("--streams not passed")
		}

		if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
			return err
		}

		destinationConfig = &types.WriterConfig{}
		if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
			return err
		}
		if destinationConfig.BatchSize <= 0 {
			destinationConfig.BatchSize = int(batchSize)
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
	RunE: func(cmd *cobra.Command, _ []string) (syncErr error) {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		telemetryClient := telemetry.GetInstance()
		configHash := telemetry.ComputeConfigHash(configPath, destinationConfigPath)
		startTime := time.Now()
		var pool *destination.WriterPool
		defer func() {
			props := map[string]interface{}{
				"duration_sec":     time.Since(startTime).Seconds(),
				"success":          syncErr == nil,
				"source_type":      connector.Type(),
				"destination_type": destinationConfig.Type,
			}
			if pool != nil {
				props["records_read"] = pool.ReadRecords()
				props["records_synced"] = pool.SyncedRecords()
			}
			if metrics := telemetryClient.TrackSyncResult(configHash, syncErr == nil); metrics != nil {
				props["sync_total"] = metrics.Total
			}
			if err := telemetryClient.SendEvent("SyncCompleted", props); err != nil {
				logger.Debugf("failed to send sync event: %s", err)
			}
			telemetryClient.Flush()
		}()

		if err := connector.Setup(ctx); err != nil {
			return err
		}

		streams, err := connector.Discover(ctx)
		if err != nil {
			return err
		}

		selected, err := types.IdentifySelectedStreams(catalog, streams, state)
		if err != nil {
			return fmt.Errorf("failed to get selected streams: %w", err)
		}

		pool, err = destination.NewWriterPool(ctx, destinationConfig, nil)
		if err != nil {
			return err
		}

		connector.SetupState(state)
		// final state is written on failure too; bookmarks of finished streams are kept
		defer state.LogState()

		if err := connector.Read(ctx, pool, selected.StandardStreams, selected.IncrementalStreams); err != nil {
			return fmt.Errorf("error occurred while reading records: %w", err)
		}

		logger.Infof("Sync completed in %s, total records read: %d, total records synced: %d", time.Since(startTime).Round(time.Millisecond), pool.ReadRecords(), pool.SyncedRecords())
		return nil
	},
}

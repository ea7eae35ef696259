package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-ticketmatic/telemetry"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == notSet {
			return fmt.Errorf("--config not passed")
		}

		return utils.UnmarshalFile(configPath, connector.GetConfigRef(), true)
	},
	RunE: func(cmd *cobra.Command, _ []string) (discoverErr error) {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		telemetryClient := telemetry.GetInstance()
		startTime := time.Now()
		var streamCount int
		defer func() {
			props := map[string]interface{}{
				"duration_sec": time.Since(startTime).Seconds(),
				"success":      discoverErr == nil,
				"stream_count": streamCount,
				"source_type":  connector.Type(),
			}
			if discoverErr != nil {
				props["error_type"] = fmt.Sprintf("%T", discoverErr)
			}
			if err := telemetryClient.SendEvent("DiscoverCompleted", props); err != nil {
				logger.Debugf("failed to send discover event: %s", err)
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
		if len(streams) == 0 {
			return errors.New("no streams found in connector")
		}

		streamCount = len(streams)
		types.LogCatalog(streams)
		return nil
	},
}

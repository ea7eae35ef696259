package protocol

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/drivers/abstract"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

const notSet = "not-set"

var (
	configPath            string
	destinationConfigPath string
	statePath             string
	streamsPath           string
	batchSize             int64
	noSave                bool
	encryptionKey         string
	catalog               *types.Catalog
	state                 *types.State
	timeout               int64 // timeout in seconds
	destinationConfig     *types.WriterConfig

	commands  = []*cobra.Command{}
	connector *abstract.AbstractDriver
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "olake-ticketmatic",
	Short: "Ticketmatic source connector",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setRuntimeConfig()

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'olake-ticketmatic --help' to display usage guide", args[0])
		}

		return nil
	},
}

// setRuntimeConfig resolves artifact paths next to the config file unless
// overridden by flags or the environment
func setRuntimeConfig() {
	viper.AutomaticEnv()
	viper.SetDefault(constants.ConfigFolder, os.TempDir())
	viper.SetDefault(constants.StatePath, filepath.Join(os.TempDir(), "state.json"))
	viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))

	viper.Set(constants.NoSave, noSave)
	if !noSave {
		configFolder := utils.Ternary(configPath == notSet, filepath.Dir(destinationConfigPath), filepath.Dir(configPath)).(string)
		streamsPathEnv := utils.Ternary(streamsPath == "", filepath.Join(configFolder, "streams.json"), streamsPath).(string)
		statePathEnv := utils.Ternary(statePath == "", filepath.Join(configFolder, "state.json"), statePath).(string)
		viper.Set(constants.ConfigFolder, configFolder)
		viper.Set(constants.StatePath, statePathEnv)
		viper.Set(constants.StreamsPath, streamsPathEnv)
	}

	if encryptionKey != "" {
		viper.Set(constants.EncryptionKey, encryptionKey)
	}
}

// commandContext applies --timeout to the command context
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	}
	return context.WithCancel(ctx)
}

func CreateRootCommand(_ bool, driver abstract.DriverInterface) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = abstract.NewAbstractDriver(RootCmd.Context(), driver)

	return RootCmd
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd, clearCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", notSet, "(Required) Config for connector")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", notSet, "(Required) Destination config for connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "catalog", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&streamsPath, "streams", "", "", "Path to the streams file for the connector")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "(Required) State for connector")
	RootCmd.PersistentFlags().Int64VarP(&batchSize, "destination-buffer-size", "", 10000, "(Optional) Batch size for destination")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key, a UUID, or a custom string based on your encryption configuration.")
	RootCmd.PersistentFlags().Int64VarP(&timeout, "timeout", "", -1, "(Optional) Timeout for the whole command (in seconds)")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}

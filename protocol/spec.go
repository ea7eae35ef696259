package protocol

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils/jsonschema"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

// specCmd prints the json schema of the source config, or of a destination
// config when --destination names a writer type
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		config, err := specTarget(destinationConfigPath)
		if err != nil {
			return err
		}

		schema, err := jsonschema.Reflect(config)
		if err != nil {
			return fmt.Errorf("failed to reflect config: %s", err)
		}

		ordered, err := jsonschema.Ordered(schema)
		if err != nil {
			return fmt.Errorf("failed to order spec properties: %s", err)
		}

		logger.Info(types.Message{
			Type: types.SpecMessage,
			Spec: ordered,
		})

		return logger.FileLogger(map[string]any{"spec": ordered}, "spec", ".json")
	},
}

func specTarget(destinationType string) (any, error) {
	if destinationType == notSet {
		return connector.Spec(), nil
	}

	newFunc, found := destination.RegisteredWriters[types.DestinationType(strings.ToUpper(destinationType))]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", destinationType)
	}

	return newFunc().Spec(), nil
}

/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if destinationConfigPath == notSet && configPath == notSet {
			return fmt.Errorf("no connector config or destination config provided")
		}

		// check for destination config
		if destinationConfigPath != notSet {
			destinationConfig = &types.WriterConfig{}
			return utils.UnmarshalFile(destinationConfigPath, destinationConfig, true)
		}

		return utils.UnmarshalFile(configPath, connector.GetConfigRef(), true)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		err := func() error {
			if destinationConfigPath != notSet {
				_, err := destination.NewWriterPool(ctx, destinationConfig, nil)
				return err
			}

			return connector.Setup(ctx)
		}()

		logger.Info(connectionStatus(err))
	},
}

func connectionStatus(err error) types.Message {
	message := types.Message{
		Type: types.ConnectionStatusMessage,
		ConnectionStatus: &types.StatusRow{
			Status: types.ConnectionSucceed,
		},
	}
	if err != nil {
		message.ConnectionStatus.Message = err.Error()
		message.ConnectionStatus.Status = types.ConnectionFailed
	}
	return message
}

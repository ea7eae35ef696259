package olake

import (
	"os"

	"github.com/datazip-inc/olake-ticketmatic/drivers/abstract"
	"github.com/datazip-inc/olake-ticketmatic/protocol"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/datazip-inc/olake-ticketmatic/utils/safego"
	_ "github.com/datazip-inc/olake-ticketmatic/writers/parquet" // registering parquet writer
	_ "github.com/datazip-inc/olake-ticketmatic/writers/singer"  // registering singer writer
)

func RegisterDriver(driver abstract.DriverInterface) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(true, driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}

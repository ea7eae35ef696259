package main

import (
	olake "github.com/datazip-inc/olake-ticketmatic"
	driver "github.com/datazip-inc/olake-ticketmatic/drivers/ticketmatic/internal"
)

func main() {
	olake.RegisterDriver(&driver.Ticketmatic{})
}

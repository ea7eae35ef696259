package constants

import "errors"

const (
	ParquetFileExt     = "parquet"
	OlakeID            = "_olake_id"
	OlakeTimestamp     = "_olake_timestamp"
	OpType             = "_op_type"
	DefaultThreadCount = 1
	DefaultRetryCount  = 0
	DefaultPageSize    = 1000
	DefaultStartDate   = "2022-10-01"
	TicketmaticAPIURL  = "https://apps.ticketmatic.com/api/1"
	TicketmaticNS      = "ticketmatic"
)

// runtime keys shared through viper
const (
	ConfigFolder  = "CONFIG_FOLDER"
	StatePath     = "STATE_PATH"
	StreamsPath   = "STREAMS_PATH"
	EncryptionKey = "ENCRYPTION_KEY"
	LogLevel      = "LOG_LEVEL"
	NoSave        = "NO_SAVE"
)

// usage events are only sent when enabled and a segment write key is set
const (
	TelemetryEnabled = "TELEMETRY_ENABLED"
	TelemetryKey     = "TELEMETRY_SEGMENT_KEY"
)

type DriverType string

const (
	Ticketmatic DriverType = "ticketmatic"
)

var (
	ErrNonRetryable       = errors.New("non-retryable error")
	ErrGlobalContextGroup = errors.New("global context group failed")
)

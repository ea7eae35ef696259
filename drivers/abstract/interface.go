package abstract

import (
	"context"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

// BackfillMsgFn receives every record produced by a driver
type BackfillMsgFn func(ctx context.Context, message map[string]any) error

type Config interface {
	Validate() error
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// specific to test & setup
	Setup(ctx context.Context) error
	SetupState(state *types.State)
	// sync artifacts
	MaxConnections() int
	MaxRetries() int
	// specific to discover
	GetStreamNames(ctx context.Context) ([]string, error)
	ProduceSchema(ctx context.Context, stream string) (*types.Stream, error)
	// full refresh reads every record of the stream
	StreamRecords(ctx context.Context, stream types.StreamInterface, cb BackfillMsgFn) error
	// incremental reads the records changed at or after since
	StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, since any, cb BackfillMsgFn) error
	// DefaultCursorValue is the since value used when the state holds no bookmark
	DefaultCursorValue(stream types.StreamInterface) any
}

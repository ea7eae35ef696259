package abstract

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver  DriverInterface
	state   *types.State
	stateMu sync.Mutex // serializes state checkpoints of concurrent streams
}

// delay before the first retry of a failed schema production
var discoverRetryDelay = time.Second

var DefaultColumns = map[string]types.DataType{
	constants.OlakeID:        types.String,
	constants.OlakeTimestamp: types.TimestampMicro,
	constants.OpType:         types.String,
}

func NewAbstractDriver(_ context.Context, driver DriverInterface) *AbstractDriver {
	return &AbstractDriver{
		driver: driver,
		state:  types.NewState(),
	}
}

func (a *AbstractDriver) SetupState(state *types.State) {
	a.state = state
	a.driver.SetupState(state)
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) maxConnections() int {
	return utils.Ternary(a.driver.MaxConnections() > 0, a.driver.MaxConnections(), constants.DefaultThreadCount).(int)
}

// Discover produces the schema of every stream and adds the system columns
func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	streams, err := a.driver.GetStreamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream names: %s", err)
	}

	var streamMap sync.Map
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.maxConnections())
	for _, stream := range streams {
		group.Go(func() error {
			return utils.RetryOnBackoff(groupCtx, a.driver.MaxRetries()+1, discoverRetryDelay, func() error {
				streamSchema, err := a.driver.ProduceSchema(groupCtx, stream)
				if err != nil {
					return fmt.Errorf("failed to produce schema for stream %s: %w", stream, err)
				}
				streamMap.Store(streamSchema.ID(), streamSchema)
				return nil
			})
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var finalStreams []*types.Stream
	streamMap.Range(func(_, value any) bool {
		convStream, _ := value.(*types.Stream)

		for column, typ := range DefaultColumns {
			convStream.UpsertField(column, typ, true)
		}

		// incremental wins whenever the stream exposes a replication key
		if convStream.SupportedSyncModes.Exists(types.INCREMENTAL) && convStream.AvailableCursorFields.Len() > 0 {
			convStream.SyncMode = types.INCREMENTAL
			convStream.CursorField = convStream.AvailableCursorFields.Array()[0]
		} else {
			convStream.SyncMode = types.FULLREFRESH
		}

		finalStreams = append(finalStreams, convStream)
		return true
	})

	sort.Slice(finalStreams, func(i, j int) bool {
		return finalStreams[i].ID() < finalStreams[j].ID()
	})

	return finalStreams, nil
}

// ClearState drops the bookmarks of the given streams
func (a *AbstractDriver) ClearState(streams []types.StreamInterface) (*types.State, error) {
	if a.state == nil {
		return types.NewState(), nil
	}

	for _, stream := range streams {
		a.state.ResetCursor(stream.Self())
	}

	return a.state, nil
}

// Read syncs every stream to completion, at most MaxConnections at a time.
// State is checkpointed after each stream, whatever its outcome.
func (a *AbstractDriver) Read(ctx context.Context, pool *destination.WriterPool, standardStreams, incrementalStreams []types.StreamInterface) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.maxConnections())

	schedule := func(streams []types.StreamInterface, run func(context.Context, *destination.WriterPool, types.StreamInterface) error) {
		for _, stream := range streams {
			group.Go(func() error {
				err := run(groupCtx, pool, stream)
				if checkpointErr := a.checkpoint(groupCtx, pool); checkpointErr != nil {
					err = utils.Ternary(err == nil, checkpointErr, fmt.Errorf("%s: prev error: %w", checkpointErr, err)).(error)
				}
				if err != nil {
					return fmt.Errorf("stream[%s]: %w", stream.ID(), err)
				}

				logger.Infof("finished syncing stream[%s]", stream.ID())
				return nil
			})
		}
	}

	schedule(incrementalStreams, a.Incremental)
	schedule(standardStreams, a.FullRefresh)

	return group.Wait()
}

// checkpoint persists the state and forwards it to the destination
func (a *AbstractDriver) checkpoint(ctx context.Context, pool *destination.WriterPool) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	a.state.LogState()
	return pool.EmitState(context.WithoutCancel(ctx), a.state)
}

// generateThreadID creates a unique thread ID for a stream
func generateThreadID(streamID string) string {
	return fmt.Sprintf("%s_%s", streamID, utils.ULID())
}

// closeWriter closes the thread and folds a close failure into err. Records
// already pushed are flushed even when the read itself failed.
func closeWriter(ctx context.Context, inserter *destination.WriterThread, err *error) bool {
	closeErr := inserter.Close(context.WithoutCancel(ctx))
	if closeErr == nil {
		return true
	}

	closeErr = fmt.Errorf("failed to close writer: %s", closeErr)
	*err = utils.Ternary(*err == nil, closeErr, fmt.Errorf("%s: prev error: %w", closeErr, *err)).(error)
	return false
}

package destination

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

const (
	DestError        = "destination error"
	DefaultBatchSize = 10000
)

type (
	NewFunc func() Writer

	Options struct {
		Identifier string
		Number     int64
	}

	ThreadOptions func(opt *Options)

	WriterPool struct {
		batchSize     int
		recordCount   atomic.Int64
		readCount     atomic.Int64
		ThreadCounter atomic.Int64 // Used in naming files and global count for threads
		config        any          // respective writer config
		init          NewFunc      // To initialize exclusive destination threads
		root          Writer       // checked instance, used for pool level operations
		tmu           sync.Mutex   // Mutex between threads
	}
)

var RegisteredWriters = map[types.DestinationType]NewFunc{}

func WithIdentifier(identifier string) ThreadOptions {
	return func(opt *Options) {
		opt.Identifier = identifier
	}
}

// NewWriterPool checks the destination config and returns a pool that hands
// out one writer thread per stream. Streams listed in dropStreams are cleared
// from the destination first.
func NewWriterPool(ctx context.Context, config *types.WriterConfig, dropStreams []string) (*WriterPool, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter := newfunc()
	if err := utils.Unmarshal(config.WriterConfig, adapter.GetConfigRef()); err != nil {
		return nil, err
	}

	if err := adapter.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}

	if dropStreams != nil {
		if err := adapter.DropStreams(ctx, dropStreams); err != nil {
			return nil, fmt.Errorf("failed to clear destination: %s", err)
		}
	}

	return &WriterPool{
		batchSize: utils.Ternary(config.BatchSize > 0, config.BatchSize, DefaultBatchSize).(int),
		config:    config.WriterConfig,
		init:      newfunc,
		root:      adapter,
	}, nil
}

// WriterThread buffers the records of one stream and flushes them in batches
type WriterThread struct {
	*WriterPool
	writer  Writer
	buffer  []types.RawRecord
	options *Options
	closed  bool
}

// NewThread initializes a dedicated writer for stream
func (w *WriterPool) NewThread(ctx context.Context, stream types.StreamInterface, options ...ThreadOptions) (*WriterThread, error) {
	opts := &Options{Number: w.ThreadCounter.Add(1)}
	for _, one := range options {
		one(opts)
	}
	if opts.Identifier == "" {
		opts.Identifier = utils.ULID()
	}

	writer, err := func() (Writer, error) {
		w.tmu.Lock() // lock for concurrent access of w.config
		defer w.tmu.Unlock()

		writer := w.init()
		if err := utils.Unmarshal(w.config, writer.GetConfigRef()); err != nil {
			return nil, err
		}
		return writer, writer.Setup(ctx, stream, opts)
	}()
	if err != nil {
		return nil, fmt.Errorf("failed to init thread[%d] for stream[%s]: %s", opts.Number, stream.ID(), err)
	}

	return &WriterThread{
		WriterPool: w,
		writer:     writer,
		buffer:     make([]types.RawRecord, 0, w.batchSize),
		options:    opts,
	}, nil
}

// Push buffers a record and flushes the buffer once it reaches the batch size
func (t *WriterThread) Push(ctx context.Context, record types.RawRecord) error {
	if t.closed {
		return fmt.Errorf("%s: push on closed thread[%d]", DestError, t.options.Number)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.buffer = append(t.buffer, record)
	t.readCount.Add(1)
	if len(t.buffer) >= t.batchSize {
		return t.flush(ctx)
	}

	return nil
}

// Close flushes pending records and closes the underlying writer
func (t *WriterThread) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true

	return utils.ErrExecSequential(
		func() error { return t.flush(ctx) },
		func() error { return t.writer.Close(ctx) },
	)
}

func (t *WriterThread) flush(ctx context.Context) error {
	if len(t.buffer) == 0 {
		return nil
	}

	if err := t.writer.Write(ctx, t.buffer); err != nil {
		return fmt.Errorf("%s: failed to write records: %s", DestError, err)
	}

	t.recordCount.Add(int64(len(t.buffer)))
	logger.Debugf("thread[%d] flushed %d records", t.options.Number, len(t.buffer))
	t.buffer = make([]types.RawRecord, 0, t.batchSize)
	return nil
}

// EmitState forwards state to the destination when it carries state in its output
func (w *WriterPool) EmitState(ctx context.Context, state *types.State) error {
	emitter, ok := w.root.(StateEmitter)
	if !ok {
		return nil
	}

	return emitter.EmitState(ctx, state)
}

// SyncedRecords returns the records written to the destination
func (w *WriterPool) SyncedRecords() int64 {
	return w.recordCount.Load()
}

// ReadRecords returns the records pushed by drivers
func (w *WriterPool) ReadRecords() int64 {
	return w.readCount.Load()
}

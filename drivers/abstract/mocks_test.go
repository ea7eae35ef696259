package abstract

import (
	"context"
	"errors"
	"sync"

	"github.com/datazip-inc/olake-ticketmatic/destination"
	"github.com/datazip-inc/olake-ticketmatic/types"
)

const captureType types.DestinationType = "CAPTURE"

// captured holds everything written through capture writers of one test
type captured struct {
	mu      sync.Mutex
	records map[string][]types.RawRecord
	states  []map[string]map[string]any
}

func (c *captured) recordsOf(stream string) []types.RawRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[stream]
}

type captureConfig struct{}

func (c *captureConfig) Validate() error { return nil }

type captureWriter struct {
	out    *captured
	stream types.StreamInterface
}

func (w *captureWriter) GetConfigRef() destination.Config { return &captureConfig{} }
func (w *captureWriter) Spec() any { return captureConfig{} }
func (w *captureWriter) Type() string { return string(captureType) }
func (w *captureWriter) Check(_ context.Context) error { return nil }
func (w *captureWriter) DropStreams(_ context.Context, _ []string) error { return nil }
func (w *captureWriter) Close(_ context.Context) error { return nil }

func (w *captureWriter) Setup(_ context.Context, stream types.StreamInterface, _ *destination.Options) error {
	w.stream = stream
	return nil
}

func (w *captureWriter) Write(_ context.Context, records []types.RawRecord) error {
	w.out.mu.Lock()
	defer w.out.mu.Unlock()
	w.out.records[w.stream.Name()] = append(w.out.records[w.stream.Name()], records...)
	return nil
}

func (w *captureWriter) EmitState(_ context.Context, state *types.State) error {
	w.out.mu.Lock()
	defer w.out.mu.Unlock()
	w.out.states = append(w.out.states, state.Bookmarks())
	return nil
}

func newCapturePool(ctx context.Context) (*destination.WriterPool, *captured, func(), error) {
	out := &captured{records: map[string][]types.RawRecord{}}
	destination.RegisteredWriters[captureType] = func() destination.Writer {
		return &captureWriter{out: out}
	}
	cleanup := func() { delete(destination.RegisteredWriters, captureType) }

	pool, err := destination.NewWriterPool(ctx, &types.WriterConfig{Type: captureType, BatchSize: 2}, nil)
	return pool, out, cleanup, err
}

type mockConfig struct{}

func (c *mockConfig) Validate() error { return nil }

// mockDriver serves fixed records per stream and can fail a stream after some records
type mockDriver struct {
	streams      map[string]*types.Stream
	records      map[string][]map[string]any
	failAfter    map[string]int
	failSchema   map[string]int
	defaultSince any
	threads      int

	mu         sync.Mutex
	sinceSeen  map[string]any
	schemaHits map[string]int
}

var errSourceDown = errors.New("source unavailable")

func newMockDriver() *mockDriver {
	return &mockDriver{
		streams:      map[string]*types.Stream{},
		records:      map[string][]map[string]any{},
		failAfter:    map[string]int{},
		failSchema:   map[string]int{},
		defaultSince: "2022-10-01",
		sinceSeen:    map[string]any{},
		schemaHits:   map[string]int{},
	}
}

func (m *mockDriver) addStream(stream *types.Stream, records ...map[string]any) {
	m.streams[stream.Name] = stream
	m.records[stream.Name] = records
}

func (m *mockDriver) GetConfigRef() Config { return &mockConfig{} }
func (m *mockDriver) Spec() any { return mockConfig{} }
func (m *mockDriver) Type() string { return "mock" }
func (m *mockDriver) Setup(_ context.Context) error { return nil }
func (m *mockDriver) SetupState(_ *types.State) {}
func (m *mockDriver) MaxConnections() int { return m.threads }
func (m *mockDriver) MaxRetries() int { return 2 }
func (m *mockDriver) DefaultCursorValue(_ types.StreamInterface) any { return m.defaultSince }

func (m *mockDriver) GetStreamNames(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.streams))
	for name := range m.streams {
		names = append(names, name)
	}
	return names, nil
}

func (m *mockDriver) ProduceSchema(_ context.Context, stream string) (*types.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaHits[stream]++
	if m.schemaHits[stream] <= m.failSchema[stream] {
		return nil, errSourceDown
	}
	return m.streams[stream], nil
}

func (m *mockDriver) emit(ctx context.Context, stream types.StreamInterface, cb BackfillMsgFn) error {
	for idx, record := range m.records[stream.Name()] {
		if limit, found := m.failAfter[stream.Name()]; found && idx == limit {
			return errSourceDown
		}
		if err := cb(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockDriver) StreamRecords(ctx context.Context, stream types.StreamInterface, cb BackfillMsgFn) error {
	return m.emit(ctx, stream, cb)
}

func (m *mockDriver) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, since any, cb BackfillMsgFn) error {
	m.mu.Lock()
	m.sinceSeen[stream.Name()] = since
	m.mu.Unlock()
	return m.emit(ctx, stream, cb)
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/drivers/abstract"
	"github.com/datazip-inc/olake-ticketmatic/types"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/datazip-inc/olake-ticketmatic/utils/typeutils"
)

const (
	// records sampled during discovery to type custom fields
	discoverSampleSize = 100
	checkPath          = "/settings/pricing/pricetypes"
)

// Ticketmatic driver implementation
type Ticketmatic struct {
	config    *Config
	state     *types.State
	transport Transport
}

func (t *Ticketmatic) Setup(ctx context.Context) error {
	if err := t.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if t.transport == nil {
		t.transport = NewClient(t.config)
	}

	query := url.Values{}
	query.Set("limit", "1")
	if err := t.transport.Get(ctx, checkPath, query, &Page{}); err != nil {
		return fmt.Errorf("failed to connect to ticketmatic account[%s]: %w", t.config.AccountName, err)
	}

	logger.Infof("Successfully connected to Ticketmatic account[%s]", t.config.AccountName)
	return nil
}

func (t *Ticketmatic) SetupState(state *types.State) {
	t.state = state
}

func (t *Ticketmatic) GetConfigRef() abstract.Config {
	t.config = &Config{}
	return t.config
}

func (t *Ticketmatic) Spec() any {
	return Config{}
}

func (t *Ticketmatic) Type() string {
	return string(constants.Ticketmatic)
}

func (t *Ticketmatic) MaxConnections() int {
	return t.config.MaxThreads
}

// MaxRetries is zero: failed requests are already retried by the client
func (t *Ticketmatic) MaxRetries() int {
	return 0
}

func (t *Ticketmatic) GetStreamNames(_ context.Context) ([]string, error) {
	if len(t.config.Streams) > 0 {
		return t.config.Streams, nil
	}
	return StreamNames(), nil
}

// ProduceSchema declares the catalog fields and types any undeclared field
// (custom c_ fields differ per account) from a sample of the first page.
// Endpoints the api key may not read keep their declared fields.
func (t *Ticketmatic) ProduceSchema(ctx context.Context, streamName string) (*types.Stream, error) {
	def, ok := Catalog[streamName]
	if !ok {
		return nil, fmt.Errorf("unknown stream[%s]", streamName)
	}

	stream := types.NewStream(def.Name, constants.TicketmaticNS)
	stream.WithPrimaryKey(def.PrimaryKey...)
	stream.WithSyncMode(def.syncModes()...)
	if def.Incremental() {
		stream.WithCursorField(def.ReplicationKey)
	}

	for column, typ := range def.Fields {
		stream.UpsertField(column, typ, !utils.ExistInArray(def.PrimaryKey, column))
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(min(discoverSampleSize, t.config.PageSize)))
	query.Set("includearchived", "true")
	page := &Page{}
	if err := t.transport.Get(ctx, def.Path, query, page); err != nil {
		// a key without access to one endpoint must not block the others
		var transportErr *TransportError
		if errors.As(err, &transportErr) && !transportErr.retryable() {
			logger.Warnf("stream[%s] could not be sampled, using declared fields only: %s", streamName, err)
			return stream, nil
		}
		return nil, fmt.Errorf("failed to sample stream[%s]: %w", streamName, err)
	}

	undeclared := make([]map[string]any, 0, len(page.Data))
	for _, raw := range page.Data {
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, &MalformedResponseError{Stream: streamName, Reason: err.Error()}
		}
		for column := range def.Fields {
			delete(record, column)
		}
		undeclared = append(undeclared, record)
	}

	if err := typeutils.Resolve(stream, undeclared...); err != nil {
		return nil, fmt.Errorf("failed to resolve undeclared fields of stream[%s]: %s", streamName, err)
	}

	return stream, nil
}

func (t *Ticketmatic) StreamRecords(ctx context.Context, stream types.StreamInterface, cb abstract.BackfillMsgFn) error {
	fetcher, err := t.fetcher(stream)
	if err != nil {
		return err
	}
	return fetcher.Run(ctx, nil, RecordFn(cb))
}

func (t *Ticketmatic) StreamIncrementalChanges(ctx context.Context, stream types.StreamInterface, since any, cb abstract.BackfillMsgFn) error {
	fetcher, err := t.fetcher(stream)
	if err != nil {
		return err
	}
	if !fetcher.def.Incremental() {
		return fmt.Errorf("stream[%s] has no replication key", stream.ID())
	}

	logger.Infof("Fetching stream[%s] updated since %s", stream.ID(), FormatSince(since))
	return fetcher.Run(ctx, since, RecordFn(cb))
}

// DefaultCursorValue is the configured start date, used until a bookmark exists
func (t *Ticketmatic) DefaultCursorValue(_ types.StreamInterface) any {
	return t.config.StartDate
}

func (t *Ticketmatic) fetcher(stream types.StreamInterface) (*StreamFetcher, error) {
	def, ok := Catalog[stream.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown stream[%s]", stream.ID())
	}

	policy := def.Policy
	if t.config.PaginationPolicy != "" {
		policy = PolicyName(t.config.PaginationPolicy)
	}

	return NewStreamFetcher(def, t.transport, NewPaginator(policy), t.config.PageSize), nil
}

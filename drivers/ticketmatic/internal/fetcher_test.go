package driver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-ticketmatic/constants"
)

func newTestFetcher(t *testing.T, srv *testServer, streamName string, policy PolicyName, pageSize int) *StreamFetcher {
	t.Helper()
	config := testConfig(t, srv.URL, func(c *Config) { c.PageSize = pageSize })
	return NewStreamFetcher(Catalog[streamName], NewClient(config), NewPaginator(policy), pageSize)
}

func TestFetcherEmptyPagePolicy(t *testing.T) {
	srv := newTestServer(t, scriptedPages(page(rows(3, 0)...), page(rows(3, 3)...), page()))
	fetcher := newTestFetcher(t, srv, "price_types", EmptyPagePolicy, 3)

	var records []map[string]any
	require.NoError(t, fetcher.Run(context.Background(), nil, collect(&records)))

	calls := srv.calls("/settings/pricing/pricetypes")
	assert.Len(t, calls, 3)
	assert.Equal(t, []string{"0", "3", "6"}, offsets(calls))
	assert.Len(t, records, 6)
}

func TestFetcherShortPageStillRequestsNext(t *testing.T) {
	srv := newTestServer(t, scriptedPages(page(rows(1, 0)...), page()))
	fetcher := newTestFetcher(t, srv, "price_types", EmptyPagePolicy, 3)

	var records []map[string]any
	require.NoError(t, fetcher.Run(context.Background(), nil, collect(&records)))

	assert.Equal(t, []string{"0", "3"}, offsets(srv.calls("/settings/pricing/pricetypes")))
	assert.Len(t, records, 1)
}

func TestFetcherTotalCountPolicy(t *testing.T) {
	srv := newTestServer(t, scriptedPages(counted(6, rows(3, 0)...), counted(6, rows(3, 3)...), counted(6)))
	fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 3)

	var records []map[string]any
	require.NoError(t, fetcher.Run(context.Background(), nil, collect(&records)))

	assert.Equal(t, []string{"0", "3"}, offsets(srv.calls("/settings/pricing/pricetypes")))
	assert.Len(t, records, 6)
}

func TestFetcherMissingCountStops(t *testing.T) {
	srv := newTestServer(t, scriptedPages(page(rows(3, 0)...), page(rows(3, 3)...)))
	fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 3)

	var records []map[string]any
	require.NoError(t, fetcher.Run(context.Background(), nil, collect(&records)))

	assert.Equal(t, []string{"0"}, offsets(srv.calls("/settings/pricing/pricetypes")))
	assert.Len(t, records, 3)
}

func TestFetcherOffsetsIgnoreRecordCounts(t *testing.T) {
	srv := newTestServer(t, scriptedPages(
		counted(20, rows(5, 0)...),
		counted(20, rows(2, 5)...),
		counted(20),
		counted(20, rows(1, 7)...),
	))
	fetcher := newTestFetcher(t, srv, "seat_ranks", TotalCountPolicy, 5)

	require.NoError(t, fetcher.Run(context.Background(), nil, func(context.Context, map[string]any) error { return nil }))
	assert.Equal(t, []string{"0", "5", "10", "15"}, offsets(srv.calls("/settings/seatingplans/seatranks")))
}

func TestFetcherRequestParameters(t *testing.T) {
	tests := []struct {
		name       string
		stream     string
		since      any
		wantSince  string
		withLookup bool
	}{
		{"incremental stream sends since", "orders", "2023-01-02 03:04:05", "2023-01-02 03:04:05", true},
		{"time bookmark uses api layout", "events", time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), "2023-01-02 03:04:05", true},
		{"full refresh stream never filters", "price_types", "2023-01-02 03:04:05", "", true},
		{"stream without lookups", "locations", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, scriptedPages(page()))
			fetcher := newTestFetcher(t, srv, tt.stream, TotalCountPolicy, 1000)
			require.NoError(t, fetcher.Run(context.Background(), tt.since, func(context.Context, map[string]any) error { return nil }))

			calls := srv.calls(Catalog[tt.stream].Path)
			require.Len(t, calls, 1)
			query := calls[0].query
			assert.Equal(t, "true", query.Get("includearchived"))
			assert.Equal(t, "1000", query.Get("limit"))
			assert.Equal(t, "0", query.Get("offset"))
			assert.Equal(t, tt.wantSince, query.Get("lastupdatesince"))
			_, hasSince := query["lastupdatesince"]
			assert.Equal(t, tt.wantSince != "", hasSince)
			assert.Equal(t, tt.withLookup, query.Get("output") == "withlookup")
		})
	}
}

func TestFetcherEveryRequestIncludesArchived(t *testing.T) {
	srv := newTestServer(t, scriptedPages(page(rows(2, 0)...), page(rows(2, 2)...), page()))
	fetcher := newTestFetcher(t, srv, "contacts", EmptyPagePolicy, 2)
	require.NoError(t, fetcher.Run(context.Background(), "2022-10-01", func(context.Context, map[string]any) error { return nil }))

	calls := srv.calls("/contacts")
	require.Len(t, calls, 3)
	for _, call := range calls {
		assert.Equal(t, "true", call.query.Get("includearchived"))
		assert.Equal(t, "2022-10-01", call.query.Get("lastupdatesince"))
	}
}

func TestFetcherMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{"nbrofresults":2}`},
		{"record is not an object", `{"data":[{"id":1},42]}`},
		{"body is not json", `<html>maintenance</html>`},
		{"data is not a list", `{"data":{"id":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(string, url.Values) (int, any) { return http.StatusOK, tt.body })
			fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 10)

			err := fetcher.Run(context.Background(), nil, func(context.Context, map[string]any) error { return nil })
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "price_types", malformed.Stream)
		})
	}
}

func TestFetcherSurfacesTransportErrors(t *testing.T) {
	srv := newTestServer(t, func(string, url.Values) (int, any) { return http.StatusUnauthorized, `{"message":"bad credentials"}` })
	fetcher := newTestFetcher(t, srv, "orders", TotalCountPolicy, 10)

	err := fetcher.Run(context.Background(), "2022-10-01", func(context.Context, map[string]any) error { return nil })
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)
	assert.Contains(t, transportErr.Body, "bad credentials")
	assert.True(t, errors.Is(err, constants.ErrNonRetryable))
}

func TestFetcherKeepsRecordsEmittedBeforeFailure(t *testing.T) {
	calls := 0
	srv := newTestServer(t, func(string, url.Values) (int, any) {
		calls++
		if calls == 1 {
			return http.StatusOK, counted(10, rows(3, 0)...)
		}
		return http.StatusBadRequest, "boom"
	})
	fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 3)

	var records []map[string]any
	err := fetcher.Run(context.Background(), nil, collect(&records))
	require.Error(t, err)
	assert.Len(t, records, 3)
}

func TestFetcherStopsOnEmitError(t *testing.T) {
	srv := newTestServer(t, scriptedPages(counted(6, rows(3, 0)...), counted(6, rows(3, 3)...)))
	fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 3)

	sinkDown := errors.New("sink down")
	err := fetcher.Run(context.Background(), nil, func(context.Context, map[string]any) error { return sinkDown })
	assert.ErrorIs(t, err, sinkDown)
	assert.Len(t, srv.calls("/settings/pricing/pricetypes"), 1)
}

func TestFetcherHonoursCancellation(t *testing.T) {
	srv := newTestServer(t, scriptedPages(counted(6, rows(3, 0)...), counted(6, rows(3, 3)...)))
	fetcher := newTestFetcher(t, srv, "price_types", TotalCountPolicy, 3)

	ctx, cancel := context.WithCancel(context.Background())
	err := fetcher.Run(ctx, nil, func(context.Context, map[string]any) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, srv.calls("/settings/pricing/pricetypes"), 1)
}

func TestDecodeRecordKeepsIntegerPrecision(t *testing.T) {
	record, err := decodeRecord([]byte(`{"orderid": 9007199254740993, "amountpaid": 12.5}`))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", record["orderid"].(interface{ String() string }).String())
}

func TestFormatSince(t *testing.T) {
	tests := []struct {
		name  string
		since any
		want  string
	}{
		{"nil", nil, ""},
		{"string unchanged", "2023-05-06 07:08:09", "2023-05-06 07:08:09"},
		{"date string", "2022-10-01", "2022-10-01"},
		{"time converted to utc", time.Date(2023, 5, 6, 9, 8, 9, 0, time.FixedZone("CEST", 2*3600)), "2023-05-06 07:08:09"},
		{"number", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSince(tt.since))
		})
	}
}

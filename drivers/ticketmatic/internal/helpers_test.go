package driver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type handlerFn func(path string, query url.Values) (int, any)

type request struct {
	path  string
	query url.Values
	auth  string
}

type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []request
}

// newTestServer answers every request with the status and body returned by
// handler; string bodies are written as is, anything else as json
func newTestServer(t *testing.T, handler handlerFn) *testServer {
	t.Helper()

	srv := &testServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/demo"):]
		srv.mu.Lock()
		srv.requests = append(srv.requests, request{path: path, query: r.URL.Query(), auth: r.Header.Get("Authorization")})
		srv.mu.Unlock()

		status, body := handler(path, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if raw, ok := body.(string); ok {
			_, _ = w.Write([]byte(raw))
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

// calls returns the requests made to path in order
func (s *testServer) calls(path string) []request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []request
	for _, req := range s.requests {
		if req.path == path {
			out = append(out, req)
		}
	}
	return out
}

func offsets(requests []request) []string {
	out := make([]string, 0, len(requests))
	for _, req := range requests {
		out = append(out, req.query.Get("offset"))
	}
	return out
}

// scriptedPages serves pages in request order and an empty page afterwards
func scriptedPages(pages ...any) handlerFn {
	var mu sync.Mutex
	served := 0
	return func(_ string, _ url.Values) (int, any) {
		mu.Lock()
		defer mu.Unlock()

		if served >= len(pages) {
			return http.StatusOK, page()
		}
		served++
		return http.StatusOK, pages[served-1]
	}
}

// page builds an envelope without a count field
func page(records ...map[string]any) map[string]any {
	data := make([]map[string]any, 0, len(records))
	data = append(data, records...)
	return map[string]any{"data": data}
}

func counted(total int, records ...map[string]any) map[string]any {
	envelope := page(records...)
	envelope[countField] = total
	return envelope
}

func rows(n, start int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{"id": start + i, "name": "row"})
	}
	return out
}

func testConfig(t *testing.T, baseURL string, mutate func(*Config)) *Config {
	t.Helper()

	config := &Config{
		AccountName: "demo",
		APIKey:      "key",
		APISecret:   "secret",
		BaseURL:     baseURL,
	}
	if mutate != nil {
		mutate(config)
	}
	require.NoError(t, config.Validate())
	return config
}

func newTestDriver(t *testing.T, srv *testServer, mutate func(*Config)) *Ticketmatic {
	t.Helper()

	driver := &Ticketmatic{}
	config := driver.GetConfigRef().(*Config)
	*config = *testConfig(t, srv.URL, mutate)
	require.NoError(t, driver.Setup(context.Background()))
	return driver
}

// collect gathers every record emitted during a pass
func collect(records *[]map[string]any) RecordFn {
	return func(_ context.Context, record map[string]any) error {
		*records = append(*records, record)
		return nil
	}
}

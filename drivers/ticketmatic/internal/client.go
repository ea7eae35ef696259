package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/goccy/go-json"
)

const (
	maxErrorBody     = 2048
	retryBaseBackoff = time.Second
)

// errUndecodable marks a 2xx response whose body is not the expected json
var errUndecodable = errors.New("response body is not valid json")

// Transport performs one GET against the account api and decodes the body into out
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Client is the http transport for one Ticketmatic account
type Client struct {
	http        *http.Client
	auth        CredentialProvider
	baseURL     string
	attempts    int
	backoffBase time.Duration
}

func NewClient(config *Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   config.MaxThreads * 2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.timeout(),
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   config.timeout(),
		},
		auth:        NewBasicAuth(config.APIKey, config.APISecret),
		baseURL:     config.accountURL(),
		attempts:    config.RetryCount + 1,
		backoffBase: retryBaseBackoff,
	}
}

// Get retries transient failures (network errors, 429 and 5xx) up to retry_count times
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return utils.RetryOnBackoff(ctx, c.attempts, c.backoffBase, func() error {
		err := c.do(ctx, endpoint, out)
		var terr *TransportError
		if errors.As(err, &terr) && !terr.retryable() {
			return fmt.Errorf("%w: %w", constants.ErrNonRetryable, terr)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %s", err)
	}
	req.Header.Set("Accept", "application/json")
	c.auth.Apply(req)

	logger.Debugf("GET %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: req.Method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{Method: req.Method, URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w: %s", constants.ErrNonRetryable, errUndecodable, err)
	}

	return nil
}

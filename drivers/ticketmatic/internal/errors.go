package driver

import (
	"fmt"
	"net/http"
)

// TransportError is a failed request: either no response or a non-2xx status
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s returned %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// retryable reports whether sending the same request again may succeed
func (e *TransportError) retryable() bool {
	if e.Err != nil {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// MalformedResponseError means a 2xx body did not have the expected envelope
type MalformedResponseError struct {
	Stream string
	Offset int
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for stream[%s] at offset %d: %s", e.Stream, e.Offset, e.Reason)
}

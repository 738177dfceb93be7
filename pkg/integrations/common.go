package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

// maxErrorBody bounds how much of a failed response is kept on [StatusError].
const maxErrorBody = 4 << 10

var (
	// ErrNotFound is returned when a resource doesn't exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// StatusError carries a non-200 response. It unwraps to [ErrNotFound] for
// 404 and to [ErrNetwork] otherwise, so callers can still use errors.Is.
// Body holds the start of the response body; APIs such as Last.fm put their
// own error codes there.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status %d", e.Unwrap(), e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrNetwork
}

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

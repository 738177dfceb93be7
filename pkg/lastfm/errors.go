package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/integrations"
)

// Last.fm API error codes we react to.
// See https://www.last.fm/api/errorcodes.
const (
	apiErrNotFound          = 6
	apiErrInvalidKey        = 10
	apiErrSuspendedKey      = 26
	apiErrRateLimitExceeded = 29
)

// apiError is the error payload Last.fm returns, with or without a non-200
// status.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e apiError) Error() string {
	return fmt.Sprintf("last.fm error %d: %s", e.Code, e.Message)
}

// status is embedded in every response body so that error payloads served
// with a 200 are still caught.
type status struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (s status) failure() error {
	if s.Code == 0 {
		return nil
	}
	return apiError{Code: s.Code, Message: s.Message}
}

type failer interface {
	failure() error
}

// apiFailure returns the Last.fm error payload carried by err, if any.
func apiFailure(err error) (apiError, bool) {
	var ae apiError
	if errors.As(err, &ae) {
		return ae, true
	}
	var se *integrations.StatusError
	if errors.As(err, &se) && json.Unmarshal(se.Body, &ae) == nil && ae.Code != 0 {
		return ae, true
	}
	return apiError{}, false
}

func (e apiError) toError(username string) error {
	switch e.Code {
	case apiErrNotFound:
		return errs.New(errs.ErrCodeUserNotFound, "last.fm user %q not found", username)
	case apiErrRateLimitExceeded:
		return errs.New(errs.ErrCodeRateLimited, "last.fm rate limit exceeded")
	case apiErrInvalidKey, apiErrSuspendedKey:
		return errs.New(errs.ErrCodeUnauthorized, "last.fm rejected the API key: %s", e.Message)
	default:
		return errs.Wrap(errs.ErrCodeUpstream, e, "last.fm request failed")
	}
}

// classify converts a transport or status failure into a coded error.
func classify(err error, username string) error {
	if err == nil {
		return nil
	}
	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}

	if ae, ok := apiFailure(err); ok {
		return ae.toError(username)
	}
	var se *integrations.StatusError
	if errors.As(err, &se) && se.StatusCode < 500 {
		return errs.Wrap(errs.ErrCodeUpstream, err, "last.fm request failed")
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeTimeout, err, "last.fm request timed out")
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, integrations.ErrNetwork):
		return errs.Wrap(errs.ErrCodeNetwork, err, "last.fm unreachable")
	default:
		return errs.Wrap(errs.ErrCodeUpstream, err, "last.fm returned an unreadable response")
	}
}

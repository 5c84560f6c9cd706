package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrAnonymousUnauthorized marks a 401 returned for a request sent without a token.
	ErrAnonymousUnauthorized = errors.New("unauthorized request without access token")

	// ErrRefreshUnavailable is returned when a refresh is needed but no refresh token is stored.
	ErrRefreshUnavailable = errors.New("no refresh token")

	// ErrRefreshRejected marks a refresh call that the backend did not accept.
	ErrRefreshRejected = errors.New("refresh token rejected")

	// ErrRetryFailed marks the failure of a request replayed after a successful refresh.
	ErrRetryFailed = errors.New("request failed after token refresh")

	// ErrTransport marks failures where no HTTP response was received.
	ErrTransport = errors.New("transport error")

	// ErrSessionExpired marks every terminal refresh failure. The session has been
	// cleared by the time a caller sees it.
	ErrSessionExpired = errors.New("session expired")
)

// HTTPStatusError is returned when the backend responds with a non-2xx status.
type HTTPStatusError struct {
	Method     string
	URL        string
	Status     string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

// IsSessionExpired reports whether err ended the session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var stErr *HTTPStatusError
	if errors.As(err, &stErr) {
		return stErr.StatusCode
	}
	return 0
}

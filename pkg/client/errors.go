package client

import (
	"errors"
	"fmt"
)

// ErrUnreachable is wrapped into every error caused by a transport
// failure (DNS, refused connection, timeout) so callers can tell
// "server said no" apart from "server never answered".
var ErrUnreachable = errors.New("server unreachable")

// APIError represents a non-2xx HTTP response from the backend. Message
// is the human-readable "message" field from the response body; it is
// empty when the body was absent or unparseable, and callers substitute
// their per-action fallback text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with
// the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsUnreachable returns true if err was caused by a transport failure
// rather than an explicit backend response.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

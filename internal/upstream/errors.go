package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for the upstream package. Their messages are returned to
// HTTP callers verbatim.
var (
	ErrUpstreamStatus    = errors.New("Failed to fetch data from third-party server")
	ErrMalformedResponse = errors.New("Invalid JSON received from third-party server")
	ErrUnexpectedShape   = errors.New("Expected array of numbers from third-party server")
)

// StatusError reports a non-2xx upstream response. It matches
// ErrUpstreamStatus with errors.Is.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (%d)", ErrUpstreamStatus.Error(), e.StatusCode)
}

// Unwrap returns ErrUpstreamStatus.
func (e *StatusError) Unwrap() error {
	return ErrUpstreamStatus
}

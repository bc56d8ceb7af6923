package gateway

import "errors"

// Sentinel errors for the gateway package.
var (
	ErrFetcherRequired = errors.New("number fetcher is required")
	ErrWindowRequired  = errors.New("window merger is required")

	ErrEventQueueFull   = errors.New("merge event queue is full")
	ErrEventQueueClosed = errors.New("merge event queue is closed")
)

// Client-facing error messages.
const (
	msgInvalidNumberID = "Invalid number ID"
	msgRateLimited     = "rate limit exceeded"
	msgInternal        = "internal server error"
	msgNotReady        = "not ready"
)

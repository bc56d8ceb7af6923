package nats

import "errors"

// Sentinel errors for the nats package.
var (
	ErrNotConnected  = errors.New("NATS is not connected")
	ErrStreamMissing = errors.New("merge event stream does not exist")
	ErrNilEvent      = errors.New("merge event is nil")
)

// Package dedup tracks which fetched numbers have been seen recently using a
// sliding window of bloom filters. It is independent of the number window:
// a value evicted from the window is still remembered here until the
// filters rotate it out.
package dedup

import "context"

// Tracker reports numbers that are new within the tracking window.
// Implementations must be safe for concurrent use.
type Tracker interface {
	// Novel records values and returns those not seen within the window,
	// preserving input order.
	Novel(ctx context.Context, values []float64) []float64

	// Start begins the background filter rotation goroutine.
	Start(ctx context.Context)

	// Stop signals the rotation goroutine to stop and waits for it.
	Stop()
}

// Package domain contains the bounded, deduplicated number window and the
// merge algorithm that maintains it.
package domain

import (
	"math/big"

	"github.com/gammazero/deque"
)

// PrevStateMode selects how MergeResult.Previous is derived.
type PrevStateMode string

const (
	// PrevStateDerived slices the post-merge window: it drops the last
	// len(fetched) values when the window is longer than that, and is empty
	// otherwise or when nothing was fetched. When fetched overlaps the window
	// the slice boundary does not line up with the real prior content.
	PrevStateDerived PrevStateMode = "derived"

	// PrevStateSnapshot reports the exact window content before the merge.
	PrevStateSnapshot PrevStateMode = "snapshot"
)

// Valid reports whether m is a known mode.
func (m PrevStateMode) Valid() bool {
	return m == PrevStateDerived || m == PrevStateSnapshot
}

// MergeResult is the outcome of one merge.
type MergeResult struct {
	Previous []float64
	Current  []float64
	Fetched  []float64
	Average  float64

	// Bookkeeping used for metrics and logs.
	Added      int
	Evicted    int
	Duplicates int
}

// FormattedAverage returns Average with exactly two fraction digits.
func (r MergeResult) FormattedAverage() string {
	return FormatAverage(r.Average)
}

// Window is an ordered set of at most capacity numbers. Values are kept in
// arrival order and the oldest are dropped first. Window is not safe for
// concurrent use; callers serialize access.
type Window struct {
	values   deque.Deque[float64]
	members  map[float64]struct{}
	capacity int
	mode     PrevStateMode
}

// NewWindow creates an empty window. capacity must be positive; an unknown
// mode falls back to PrevStateDerived.
func NewWindow(capacity int, mode PrevStateMode) *Window {
	if !mode.Valid() {
		mode = PrevStateDerived
	}
	return &Window{
		members:  make(map[float64]struct{}, capacity),
		capacity: capacity,
		mode:     mode,
	}
}

// Capacity returns the maximum number of values the window holds.
func (w *Window) Capacity() int {
	return w.capacity
}

// Len returns the number of values currently held.
func (w *Window) Len() int {
	return w.values.Len()
}

// Merge appends the fetched values not already present, in order, then
// trims the oldest values until the window fits its capacity. This equals
// taking the last capacity elements of the first-seen-order union of the
// window followed by fetched.
func (w *Window) Merge(fetched []float64) MergeResult {
	var before []float64
	if w.mode == PrevStateSnapshot {
		before = w.Values()
	}

	res := MergeResult{
		Fetched: make([]float64, len(fetched)),
	}

	for i, n := range fetched {
		n = normalize(n)
		res.Fetched[i] = n

		if _, ok := w.members[n]; ok {
			res.Duplicates++
			continue
		}
		w.members[n] = struct{}{}
		w.values.PushBack(n)
		res.Added++
	}

	for w.values.Len() > w.capacity {
		delete(w.members, w.values.PopFront())
		res.Evicted++
	}

	res.Current = w.Values()
	res.Average = Average(res.Current)

	switch w.mode {
	case PrevStateSnapshot:
		res.Previous = before
	default:
		res.Previous = derivePrevious(res.Current, len(fetched))
	}

	return res
}

// Snapshot returns the current window and its average without modifying it.
// Previous and Fetched are empty.
func (w *Window) Snapshot() MergeResult {
	current := w.Values()
	return MergeResult{
		Previous: []float64{},
		Current:  current,
		Fetched:  []float64{},
		Average:  Average(current),
	}
}

// Values returns a copy of the window content, oldest first. The result is
// never nil.
func (w *Window) Values() []float64 {
	out := make([]float64, w.values.Len())
	for i := range out {
		out[i] = w.values.At(i)
	}
	return out
}

func derivePrevious(current []float64, fetchedLen int) []float64 {
	if fetchedLen == 0 || len(current) <= fetchedLen {
		return []float64{}
	}
	prev := make([]float64, len(current)-fetchedLen)
	copy(prev, current)
	return prev
}

// normalize folds negative zero into zero so set membership and output agree
// with numeric equality.
func normalize(n float64) float64 {
	if n == 0 {
		return 0
	}
	return n
}

// Average returns the arithmetic mean of values, or 0 when values is empty.
// Values are summed left to right.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// FormatAverage renders avg with two fraction digits. Rounding works on the
// exact binary value with halves rounded away from zero, so 0.125 renders
// as "0.13" and 1.005 (stored slightly below) as "1.00".
func FormatAverage(avg float64) string {
	r := new(big.Rat)
	if r.SetFloat64(avg) == nil {
		// Inf or NaN; cannot come from JSON input.
		return "0.00"
	}
	return r.FloatString(2)
}

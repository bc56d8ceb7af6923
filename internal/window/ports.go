// Package window holds the bounded, deduplicated history of recently fetched
// numbers and computes its running average. The window lives for the
// process lifetime and is owned by a single-writer service.
package window

import (
	"context"

	"github.com/SebastienMelki/numwindow/internal/window/internal/domain"
)

// MergeResult is the outcome of a merge before novelty tracking.
type MergeResult = domain.MergeResult

// PrevStateMode selects how the previous window state is reported.
type PrevStateMode = domain.PrevStateMode

// Supported previous-state modes.
const (
	PrevStateDerived  = domain.PrevStateDerived
	PrevStateSnapshot = domain.PrevStateSnapshot
)

// Merger merges fetched numbers into the window.
type Merger interface {
	Merge(ctx context.Context, fetched []float64) Result
	Snapshot() Result
	Capacity() int
}

// NoveltyTracker reports which numbers were not seen recently. It is
// satisfied by *dedup.Module.
type NoveltyTracker interface {
	Novel(ctx context.Context, values []float64) []float64
}

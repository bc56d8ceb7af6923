// Package service owns the process-wide number window and serializes every
// access to it.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SebastienMelki/numwindow/internal/observability"
	"github.com/SebastienMelki/numwindow/internal/window/internal/domain"
)

// WindowService is the single writer of the number window. All reads and
// merges take the mutex, so concurrent requests observe merges in a total
// order.
type WindowService struct {
	mu      sync.Mutex
	window  *domain.Window
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWindowService creates a service around an empty window. metrics may be
// nil.
func NewWindowService(
	capacity int,
	mode domain.PrevStateMode,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *WindowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WindowService{
		window:  domain.NewWindow(capacity, mode),
		metrics: metrics,
		logger:  logger,
	}
}

// Merge folds fetched into the window and returns the resulting states.
func (s *WindowService) Merge(ctx context.Context, fetched []float64) domain.MergeResult {
	s.mu.Lock()
	res := s.window.Merge(fetched)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.WindowMerges.Add(ctx, 1)
		s.metrics.WindowSize.Record(ctx, int64(len(res.Current)))
		if res.Evicted > 0 {
			s.metrics.WindowEvictions.Add(ctx, int64(res.Evicted))
		}
		if res.Duplicates > 0 {
			s.metrics.WindowDuplicatesDropped.Add(ctx, int64(res.Duplicates))
		}
	}

	s.logger.Debug("window merged",
		"fetched", len(fetched),
		"added", res.Added,
		"duplicates", res.Duplicates,
		"evicted", res.Evicted,
		"size", len(res.Current),
	)

	return res
}

// Snapshot returns the current window without modifying it.
func (s *WindowService) Snapshot() domain.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Snapshot()
}

// Capacity returns the window capacity.
func (s *WindowService) Capacity() int {
	return s.window.Capacity()
}

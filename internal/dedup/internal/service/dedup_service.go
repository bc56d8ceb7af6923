// Package service wraps the seen-number filter pair with rotation lifecycle
// and metrics.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SebastienMelki/numwindow/internal/dedup/internal/domain"
	"github.com/SebastienMelki/numwindow/internal/observability"
)

// SeenService rotates the seen-number filters on a timer and reports which
// numbers in a batch are new within the tracking window.
type SeenService struct {
	filter  *domain.SeenSet
	metrics *observability.Metrics
	logger  *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSeenService creates a service around a fresh SeenSet. metrics may be
// nil.
func NewSeenService(
	window time.Duration,
	capacity uint,
	fpRate float64,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *SeenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeenService{
		filter:  domain.NewSeenSet(window, capacity, fpRate),
		metrics: metrics,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Novel observes every value and returns, in input order, the ones seen for
// the first time inside the window. A value repeated within the batch is
// reported once.
func (s *SeenService) Novel(ctx context.Context, values []float64) []float64 {
	novel := make([]float64, 0, len(values))
	for _, v := range values {
		if s.filter.Observe(v) {
			novel = append(novel, v)
		}
	}

	if s.metrics != nil && len(novel) > 0 {
		s.metrics.NumbersNovel.Add(ctx, int64(len(novel)))
	}
	s.logger.Debug("observed numbers", "total", len(values), "novel", len(novel))

	return novel
}

// Start launches the goroutine that rotates the filters every window/2.
// It stops when ctx is cancelled or Stop is called.
func (s *SeenService) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started = true
		rotateInterval := s.filter.Window() / 2
		s.logger.Info("seen-number tracker started",
			"window", s.filter.Window(),
			"rotate_interval", rotateInterval,
		)

		go func() {
			defer close(s.doneCh)
			ticker := time.NewTicker(rotateInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					s.filter.Rotate()
					s.logger.Debug("seen-number filters rotated")
				case <-ctx.Done():
					s.logger.Info("seen-number tracker stopping (context cancelled)")
					return
				case <-s.stopCh:
					s.logger.Info("seen-number tracker stopping (stop requested)")
					return
				}
			}
		}()
	})
}

// Stop signals the rotation goroutine and waits for it. Calling Stop without
// Start, or more than once, is a no-op.
func (s *SeenService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started {
			<-s.doneCh
		}
	})
}

package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SebastienMelki/numwindow/internal/observability"
	"github.com/SebastienMelki/numwindow/internal/window/internal/domain"
	"github.com/SebastienMelki/numwindow/internal/window/internal/service"
)

// Config holds the window configuration. Both values are fixed for the
// lifetime of the process.
type Config struct {
	// Size is the maximum number of values kept in the window
	Size int `env:"WINDOW_SIZE" envDefault:"10"`

	// PrevState selects how windowPrevState is computed (derived, snapshot)
	PrevState string `env:"WINDOW_PREV_STATE" envDefault:"derived"`
}

// DefaultConfig returns a ten-value window in derived mode.
func DefaultConfig() Config {
	return Config{
		Size:      10,
		PrevState: string(PrevStateDerived),
	}
}

// Validate checks the window size and mode.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return errors.New("WINDOW_SIZE must be positive")
	}
	if !domain.PrevStateMode(c.PrevState).Valid() {
		return fmt.Errorf("WINDOW_PREV_STATE must be %q or %q, got %q",
			PrevStateDerived, PrevStateSnapshot, c.PrevState)
	}
	return nil
}

// Result is a merge outcome plus the fetched numbers that were new to the
// novelty tracker.
type Result struct {
	MergeResult

	// Novel is empty when no tracker is configured.
	Novel []float64
}

// Module is the window module facade.
type Module struct {
	svc     *service.WindowService
	tracker NoveltyTracker
	logger  *slog.Logger
}

var _ Merger = (*Module)(nil)

// New creates a window Module. tracker and metrics are optional.
func New(cfg Config, tracker NoveltyTracker, metrics *observability.Metrics, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "window")

	return &Module{
		svc:     service.NewWindowService(cfg.Size, domain.PrevStateMode(cfg.PrevState), metrics, logger),
		tracker: tracker,
		logger:  logger,
	}
}

// Merge folds fetched into the window.
func (m *Module) Merge(ctx context.Context, fetched []float64) Result {
	res := Result{
		MergeResult: m.svc.Merge(ctx, fetched),
		Novel:       []float64{},
	}
	if m.tracker != nil {
		res.Novel = m.tracker.Novel(ctx, res.Fetched)
	}
	return res
}

// Snapshot returns the current window without modifying it.
func (m *Module) Snapshot() Result {
	return Result{
		MergeResult: m.svc.Snapshot(),
		Novel:       []float64{},
	}
}

// Capacity returns the configured window size.
func (m *Module) Capacity() int {
	return m.svc.Capacity()
}

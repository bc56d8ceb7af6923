package dedup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SebastienMelki/numwindow/internal/dedup/internal/service"
	"github.com/SebastienMelki/numwindow/internal/observability"
)

// Config holds the seen-number tracker configuration.
//
// Environment variable overrides:
//   - SEEN_ENABLED:  enable tracking (default: true)
//   - SEEN_WINDOW:   sliding window duration (default: 10m)
//   - SEEN_CAPACITY: expected distinct numbers per window (default: 100000)
//   - SEEN_FP_RATE:  bloom filter false positive rate (default: 0.0001)
type Config struct {
	Enabled  bool          `env:"SEEN_ENABLED"  envDefault:"true"`
	Window   time.Duration `env:"SEEN_WINDOW"   envDefault:"10m"`
	Capacity uint          `env:"SEEN_CAPACITY" envDefault:"100000"`
	FPRate   float64       `env:"SEEN_FP_RATE"  envDefault:"0.0001"`
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Window:   10 * time.Minute,
		Capacity: 100_000,
		FPRate:   0.0001,
	}
}

// Validate checks the bloom filter parameters.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Window <= 0 {
		return errors.New("SEEN_WINDOW must be positive")
	}
	if c.Capacity == 0 {
		return errors.New("SEEN_CAPACITY must be positive")
	}
	if c.FPRate <= 0 || c.FPRate >= 1 {
		return errors.New("SEEN_FP_RATE must be in (0, 1)")
	}
	return nil
}

// Module is the dedup module facade.
type Module struct {
	svc *service.SeenService
}

var _ Tracker = (*Module)(nil)

// New creates a new dedup Module. The metrics parameter is optional.
func New(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("module", "dedup")

	return &Module{
		svc: service.NewSeenService(cfg.Window, cfg.Capacity, cfg.FPRate, metrics, logger),
	}
}

// Novel returns the values not seen within the configured window.
func (m *Module) Novel(ctx context.Context, values []float64) []float64 {
	return m.svc.Novel(ctx, values)
}

// Start begins the background filter rotation goroutine.
func (m *Module) Start(ctx context.Context) {
	m.svc.Start(ctx)
}

// Stop signals the rotation goroutine to stop and waits for completion.
func (m *Module) Stop() {
	m.svc.Stop()
}

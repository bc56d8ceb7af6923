// Command server runs the number window HTTP service.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/SebastienMelki/numwindow/internal/dedup"
	"github.com/SebastienMelki/numwindow/internal/gateway"
	"github.com/SebastienMelki/numwindow/internal/nats"
	"github.com/SebastienMelki/numwindow/internal/observability"
	"github.com/SebastienMelki/numwindow/internal/upstream"
	"github.com/SebastienMelki/numwindow/internal/window"
)

// Config holds all server configuration.
type Config struct {
	// LogLevel is the log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log format (json, text)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP gateway configuration
	Gateway gateway.Config `envPrefix:""`

	// Upstream number services
	Upstream upstream.Config `envPrefix:""`

	// Window configuration
	Window window.Config `envPrefix:""`

	// Seen-number tracker configuration
	Seen dedup.Config `envPrefix:""`

	// NATS configuration
	NATS nats.Config `envPrefix:""`
}

// Validate checks every component configuration.
func (c Config) Validate() error {
	return errors.Join(
		c.Gateway.Validate(),
		c.Upstream.Validate(),
		c.Window.Validate(),
		c.Seen.Validate(),
		c.NATS.Validate(),
	)
}

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads an optional dotenv file into the process environment,
// then parses and validates the configuration.
func loadConfig(dotenv string) (Config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func run(cfg Config, logger *slog.Logger) error {
	logger.Info("starting numwindow server",
		"log_level", cfg.LogLevel,
		"http_addr", cfg.Gateway.Addr,
		"upstream", cfg.Upstream.BaseURL,
		"window_size", cfg.Window.Size,
		"event_queue_size", cfg.Gateway.EventQueueSize,
		"prev_state", cfg.Window.PrevState,
		"nats_enabled", cfg.NATS.Enabled,
	)
	if cfg.Upstream.AccessToken == "" {
		logger.Warn("ACCESS_TOKEN is empty, upstream requests are sent without authorization")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Metrics
	obs, err := observability.New("numwindow")
	if err != nil {
		return err
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics(obs.Meter())
	if err != nil {
		return err
	}

	// Window, optionally backed by the seen-number tracker
	var tracker window.NoveltyTracker
	if cfg.Seen.Enabled {
		seen := dedup.New(cfg.Seen, metrics, logger)
		seen.Start(ctx)
		defer seen.Stop()
		tracker = seen
	}
	numberWindow := window.New(cfg.Window, tracker, metrics, logger)

	deps := gateway.Dependencies{
		Fetcher:        upstream.NewClient(cfg.Upstream, metrics, logger),
		Window:         numberWindow,
		Metrics:        metrics,
		MetricsHandler: obs.MetricsHandler(),
	}

	// Merge events
	if cfg.NATS.Enabled {
		natsClient, err := nats.NewClient(ctx, cfg.NATS, logger)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		streamMgr := nats.NewStreamManager(natsClient.JetStream(), cfg.NATS.Stream, logger)
		if _, err := streamMgr.EnsureStream(ctx); err != nil {
			return err
		}

		deps.Publisher = nats.NewPublisher(natsClient.JetStream(), cfg.NATS.PublishTimeout, metrics, logger)
		deps.Readiness = append(deps.Readiness, natsClient)

		defer func() {
			if err := natsClient.Drain(); err != nil {
				logger.Error("NATS drain error", "error", err)
			}
		}()
	}

	server, err := gateway.NewServer(cfg.Gateway, deps, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// setupLogger creates a logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

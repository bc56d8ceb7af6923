package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamManager creates or updates the merge event stream.
type StreamManager struct {
	js     jetstream.JetStream
	config StreamConfig
	logger *slog.Logger
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(js jetstream.JetStream, cfg StreamConfig, logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		js:     js,
		config: cfg,
		logger: logger.With("component", "stream-manager"),
	}
}

// streamConfig translates StreamConfig into the JetStream form. Old
// messages are discarded once limits are hit; events are informational and
// never replayed into the window.
func (m *StreamManager) streamConfig() jetstream.StreamConfig {
	storage := jetstream.MemoryStorage
	if strings.EqualFold(m.config.Storage, "file") {
		storage = jetstream.FileStorage
	}

	return jetstream.StreamConfig{
		Name:      m.config.Name,
		Subjects:  m.config.Subjects,
		Storage:   storage,
		MaxAge:    m.config.MaxAge,
		MaxBytes:  m.config.MaxBytes,
		Replicas:  m.config.Replicas,
		Retention: jetstream.LimitsPolicy,
		Discard:   jetstream.DiscardOld,
	}
}

// EnsureStream creates the stream, or updates it when it already exists.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	cfg := m.streamConfig()

	if _, err := m.js.Stream(ctx, cfg.Name); err == nil {
		m.logger.Info("updating existing stream", "name", cfg.Name)
		stream, err := m.js.UpdateStream(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to update stream: %w", err)
		}
		return stream, nil
	}

	m.logger.Info("creating new stream", "name", cfg.Name, "subjects", cfg.Subjects)
	stream, err := m.js.CreateStream(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	m.logger.Info("stream created",
		"name", cfg.Name,
		"storage", m.config.Storage,
		"max_age", m.config.MaxAge,
		"max_bytes", m.config.MaxBytes,
	)

	return stream, nil
}

package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// healthCheckTimeout bounds a single JetStream round trip.
const healthCheckTimeout = 2 * time.Second

// connection is the part of *nats.Conn the client relies on after connect.
type connection interface {
	Status() nats.Status
	Drain() error
	Close()
}

// Client owns the broker connection used for merge events. It is ready
// once the connection is up and the merge event stream exists.
type Client struct {
	conn   connection
	js     jetstream.JetStream
	stream string
	logger *slog.Logger
}

// NewClient connects to cfg.URL and fails unless JetStream answers, so a
// misconfigured broker stops startup instead of silently dropping events.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats-client", "stream", cfg.Stream.Name)

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("lost NATS connection, merge events fail until reconnect", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection restored", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("asynchronous NATS error", "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if _, err := js.AccountInfo(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("JetStream is not available for merge events: %w", err)
	}

	logger.Info("connected to NATS",
		"url", conn.ConnectedUrl(),
		"server_id", conn.ConnectedServerId(),
	)

	return &Client{
		conn:   conn,
		js:     js,
		stream: cfg.Stream.Name,
		logger: logger,
	}, nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// HealthCheck backs /ready: the connection must be up and the merge event
// stream must exist.
func (c *Client) HealthCheck(ctx context.Context) error {
	if status := c.conn.Status(); status != nats.CONNECTED {
		return fmt.Errorf("%w (status %s)", ErrNotConnected, status)
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if _, err := c.js.Stream(ctx, c.stream); err != nil {
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			return fmt.Errorf("%w: %s", ErrStreamMissing, c.stream)
		}
		return fmt.Errorf("stream lookup failed: %w", err)
	}

	return nil
}

// Drain flushes pending publishes and closes the connection.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

// Close closes the connection immediately.
func (c *Client) Close() {
	c.conn.Close()
}

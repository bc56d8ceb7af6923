// Package gateway provides the HTTP server that exposes the number window.
package gateway

import (
	"errors"
	"time"
)

// Config holds HTTP gateway configuration.
type Config struct {
	// Addr is the address to listen on (e.g., ":9876")
	Addr string `env:"HTTP_ADDR" envDefault:":9876"`

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed UPSTREAM_TIMEOUT or slow upstream replies are cut off.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// MaxHeaderBytes is the maximum size of request headers
	MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" envDefault:"65536"` // 64KB

	// CORS configuration
	CORS CORSConfig `envPrefix:"CORS_"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Shutdown timeout for graceful shutdown
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// EventQueueSize is how many merge events may wait for the publisher
	EventQueueSize int `env:"EVENT_QUEUE_SIZE" envDefault:"256"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	// Enabled turns CORS headers on
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// AllowedOrigins is a list of allowed origins
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	// AllowedMethods is a list of allowed HTTP methods
	AllowedMethods []string `env:"ALLOWED_METHODS" envDefault:"GET,OPTIONS"`

	// AllowedHeaders is a list of allowed headers
	AllowedHeaders []string `env:"ALLOWED_HEADERS" envDefault:"Accept,Content-Type,X-Request-ID"`

	// ExposedHeaders is a list of headers exposed to the client
	ExposedHeaders []string `env:"EXPOSED_HEADERS" envDefault:"X-Request-ID"`

	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int `env:"MAX_AGE" envDefault:"86400"` // 24 hours
}

// RateLimitConfig holds rate limiting configuration. The limit is global:
// the service has no notion of clients.
type RateLimitConfig struct {
	// Enabled indicates whether rate limiting is enabled
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// RequestsPerSecond is the number of requests allowed per second
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"100"`

	// BurstSize is the maximum burst size
	BurstSize int `env:"BURST_SIZE" envDefault:"200"`
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":9876",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  64 << 10,
		ShutdownTimeout: 15 * time.Second,
		EventQueueSize:  256,
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         86400,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			BurstSize:         200,
		},
	}
}

// Validate checks the gateway configuration.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		return errors.New("RATE_LIMIT_REQUESTS_PER_SECOND and RATE_LIMIT_BURST_SIZE must be positive")
	}
	if c.EventQueueSize <= 0 {
		return errors.New("EVENT_QUEUE_SIZE must be positive")
	}
	return nil
}

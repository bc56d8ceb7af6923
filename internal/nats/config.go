// Package nats publishes window merge events to NATS JetStream.
package nats

import (
	"errors"
	"strings"
	"time"
)

// Config holds NATS connection and stream configuration.
type Config struct {
	// Enabled turns merge event publishing on
	Enabled bool `env:"NATS_ENABLED" envDefault:"false"`

	// URL is the NATS server URL (e.g., "nats://localhost:4222")
	URL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Name is the client connection name for monitoring
	Name string `env:"NATS_CLIENT_NAME" envDefault:"numwindow-server"`

	// MaxReconnects is the maximum number of reconnection attempts
	MaxReconnects int `env:"NATS_MAX_RECONNECTS" envDefault:"60"`

	// ReconnectWait is the time to wait between reconnection attempts
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`

	// Timeout is the connection timeout
	Timeout time.Duration `env:"NATS_TIMEOUT" envDefault:"5s"`

	// PublishTimeout bounds a single publish so a slow server cannot hold a request
	PublishTimeout time.Duration `env:"NATS_PUBLISH_TIMEOUT" envDefault:"2s"`

	// Stream configuration
	Stream StreamConfig `envPrefix:"NATS_STREAM_"`
}

// StreamConfig holds JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name
	Name string `env:"NAME" envDefault:"NUMBER_WINDOWS"`

	// Subjects are the subjects to capture
	Subjects []string `env:"SUBJECTS" envDefault:"numbers.>"`

	// MaxAge is the maximum age of messages in the stream
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"1h"`

	// MaxBytes is the maximum size of the stream in bytes
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"67108864"` // 64MB

	// Replicas is the number of replicas for the stream
	Replicas int `env:"REPLICAS" envDefault:"1"`

	// Storage is the storage type (file or memory)
	Storage string `env:"STORAGE" envDefault:"memory"`
}

// DefaultConfig returns the defaults used when NATS is enabled.
func DefaultConfig() Config {
	return Config{
		URL:            "nats://localhost:4222",
		Name:           "numwindow-server",
		MaxReconnects:  60,
		ReconnectWait:  2 * time.Second,
		Timeout:        5 * time.Second,
		PublishTimeout: 2 * time.Second,
		Stream: StreamConfig{
			Name:     "NUMBER_WINDOWS",
			Subjects: []string{"numbers.>"},
			MaxAge:   time.Hour,
			MaxBytes: 64 << 20,
			Replicas: 1,
			Storage:  "memory",
		},
	}
}

// Validate checks the connection and stream settings. A disabled
// configuration is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, errors.New("NATS_URL is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("NATS_TIMEOUT must be positive"))
	}
	if c.PublishTimeout < 0 {
		errs = append(errs, errors.New("NATS_PUBLISH_TIMEOUT must not be negative"))
	}
	return errors.Join(append(errs, c.Stream.Validate())...)
}

// Validate checks the stream settings.
func (c StreamConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("NATS_STREAM_NAME is required"))
	}
	if len(c.Subjects) == 0 {
		errs = append(errs, errors.New("NATS_STREAM_SUBJECTS must list at least one subject"))
	}
	for _, s := range c.Subjects {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("NATS_STREAM_SUBJECTS contains an empty subject"))
			break
		}
	}
	if c.Replicas <= 0 {
		errs = append(errs, errors.New("NATS_STREAM_REPLICAS must be positive"))
	}
	if c.MaxAge < 0 || c.MaxBytes < 0 {
		errs = append(errs, errors.New("NATS_STREAM_MAX_AGE and NATS_STREAM_MAX_BYTES must not be negative"))
	}
	if !strings.EqualFold(c.Storage, "memory") && !strings.EqualFold(c.Storage, "file") {
		errs = append(errs, errors.New("NATS_STREAM_STORAGE must be memory or file"))
	}
	return errors.Join(errs...)
}

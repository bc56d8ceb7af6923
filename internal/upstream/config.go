// Package upstream fetches numbers from the per-category number services.
package upstream

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/SebastienMelki/numwindow/internal/numbers"
)

// Config holds the upstream number service configuration.
type Config struct {
	// BaseURL is the common prefix of the number endpoints
	BaseURL string `env:"UPSTREAM_BASE_URL" envDefault:"http://20.244.56.144/test"`

	// Paths maps each identifier to its endpoint path below BaseURL
	Paths map[string]string `env:"UPSTREAM_PATHS" envDefault:"p:primes,f:fibo,e:even,r:random"`

	// AccessToken is sent as "Authorization: Bearer <token>"
	AccessToken string `env:"ACCESS_TOKEN"`

	// Timeout bounds a single upstream request
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// MaxBodyBytes caps how much of an upstream response is read
	MaxBodyBytes int64 `env:"UPSTREAM_MAX_BODY_BYTES" envDefault:"1048576"` // 1MB
}

// DefaultConfig returns the default upstream configuration without a token.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://20.244.56.144/test",
		Paths: map[string]string{
			"p": "primes",
			"f": "fibo",
			"e": "even",
			"r": "random",
		},
		Timeout:      10 * time.Second,
		MaxBodyBytes: 1 << 20,
	}
}

// Validate checks that the base URL parses and every identifier has a path.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("UPSTREAM_BASE_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("UPSTREAM_BASE_URL must be http or https, got %q", c.BaseURL)
	}

	for _, id := range numbers.All() {
		if strings.TrimSpace(c.Paths[id.String()]) == "" {
			return fmt.Errorf("UPSTREAM_PATHS has no path for %q", id)
		}
	}

	if c.Timeout < 0 {
		return errors.New("UPSTREAM_TIMEOUT must be non-negative")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("UPSTREAM_MAX_BODY_BYTES must be positive")
	}

	return nil
}

// endpoints resolves the full URL for every identifier.
func (c Config) endpoints() map[numbers.Identifier]string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	out := make(map[numbers.Identifier]string, len(c.Paths))
	for _, id := range numbers.All() {
		path := strings.TrimPrefix(strings.TrimSpace(c.Paths[id.String()]), "/")
		out[id] = base + "/" + path
	}
	return out
}

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/numwindow/internal/numbers"
	"github.com/SebastienMelki/numwindow/internal/observability"
)

// Failure reasons recorded on the upstream.fetch.errors counter.
const (
	reasonTransport = "transport"
	reasonStatus    = "status"
	reasonMalformed = "malformed"
	reasonShape     = "shape"
)

// Client fetches number lists from the upstream services. It never retries:
// every failure is returned to the caller as is.
type Client struct {
	httpClient   *http.Client
	endpoints    map[numbers.Identifier]string
	accessToken  string
	maxBodyBytes int64
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates a new upstream client. metrics may be nil.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoints:    cfg.endpoints(),
		accessToken:  cfg.AccessToken,
		maxBodyBytes: cfg.MaxBodyBytes,
		metrics:      metrics,
		logger:       logger.With("component", "upstream-client"),
	}
}

// Fetch retrieves the current numbers for id. An unknown identifier fails
// with numbers.ErrInvalidIdentifier before any network call.
func (c *Client) Fetch(ctx context.Context, id numbers.Identifier) ([]float64, error) {
	endpoint, ok := c.endpoints[id]
	if !ok {
		return nil, numbers.ErrInvalidIdentifier
	}

	start := time.Now()
	values, statusCode, err := c.fetch(ctx, endpoint)
	elapsed := float64(time.Since(start).Milliseconds())

	c.record(ctx, id, statusCode, elapsed, len(values), err)

	if err != nil {
		c.logger.Warn("upstream fetch failed",
			"identifier", id.String(),
			"url", endpoint,
			"status_code", statusCode,
			"error", err,
		)
		return nil, err
	}

	c.logger.Debug("upstream fetch complete",
		"identifier", id.String(),
		"count", len(values),
		"duration_ms", elapsed,
	)

	return values, nil
}

// fetch performs the request and returns the decoded numbers together with
// the HTTP status (0 when no response was received).
func (c *Client) fetch(ctx context.Context, endpoint string) ([]float64, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain to enable connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodyBytes))
		return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, c.maxBodyBytes)
	}

	values, err := DecodeNumbers(body)
	return values, resp.StatusCode, err
}

// DecodeNumbers extracts the "numbers" array from an upstream body.
//
// A body that is not JSON, or is the JSON literal null, fails with
// ErrMalformedResponse. Any other document without a "numbers" array made
// only of numbers fails with ErrUnexpectedShape.
func DecodeNumbers(body []byte) ([]float64, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, ErrMalformedResponse
	}
	if doc == nil {
		return nil, ErrMalformedResponse
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrUnexpectedShape
	}

	items, ok := obj["numbers"].([]any)
	if !ok {
		return nil, ErrUnexpectedShape
	}

	values := make([]float64, len(items))
	for i, item := range items {
		n, ok := item.(float64)
		if !ok {
			return nil, ErrUnexpectedShape
		}
		values[i] = n
	}

	return values, nil
}

func (c *Client) record(ctx context.Context, id numbers.Identifier, statusCode int, elapsedMs float64, count int, err error) {
	if c.metrics == nil {
		return
	}

	attrs := otelmetric.WithAttributes(
		attribute.String("category", id.Category()),
		attribute.Int("status_code", statusCode),
	)
	c.metrics.UpstreamFetchDuration.Record(ctx, elapsedMs, attrs)

	if err == nil {
		c.metrics.UpstreamNumbersFetched.Record(ctx, int64(count), attrs)
		return
	}

	c.metrics.UpstreamFetchErrors.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("category", id.Category()),
		attribute.String("reason", failureReason(err)),
	))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamStatus):
		return reasonStatus
	case errors.Is(err, ErrMalformedResponse):
		return reasonMalformed
	case errors.Is(err, ErrUnexpectedShape):
		return reasonShape
	default:
		return reasonTransport
	}
}

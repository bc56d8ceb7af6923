package observability

import (
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments used by the number window service.
// Instruments are created once at startup and shared with middleware,
// handlers, and service components.
type Metrics struct {
	// HTTP metrics
	HTTPRequestDuration otelmetric.Float64Histogram
	HTTPRequestTotal    otelmetric.Int64Counter
	HTTPRequestErrors   otelmetric.Int64Counter
	HTTPRateLimited     otelmetric.Int64Counter

	// Upstream metrics
	UpstreamFetchDuration  otelmetric.Float64Histogram
	UpstreamFetchErrors    otelmetric.Int64Counter
	UpstreamNumbersFetched otelmetric.Int64Histogram

	// Window metrics
	WindowMerges            otelmetric.Int64Counter
	WindowSize              otelmetric.Int64Gauge
	WindowEvictions         otelmetric.Int64Counter
	WindowDuplicatesDropped otelmetric.Int64Counter

	// Seen-number tracking metrics
	NumbersNovel otelmetric.Int64Counter

	// Event publishing metrics
	EventsPublished      otelmetric.Int64Counter
	EventPublishFailures otelmetric.Int64Counter
}

// NewMetrics creates all metric instruments from the given Meter.
// Each instrument is created with a descriptive name, unit, and description
// following OpenTelemetry semantic conventions.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	// HTTP metrics
	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.request.duration",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestTotal, err = meter.Int64Counter(
		"http.request.total",
		otelmetric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestErrors, err = meter.Int64Counter(
		"http.request.errors",
		otelmetric.WithDescription("HTTP request errors (4xx and 5xx)"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRateLimited, err = meter.Int64Counter(
		"http.request.rate_limited",
		otelmetric.WithDescription("HTTP requests rejected by the rate limiter"),
	)
	if err != nil {
		return nil, err
	}

	// Upstream metrics
	m.UpstreamFetchDuration, err = meter.Float64Histogram(
		"upstream.fetch.duration",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Upstream number fetch duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.UpstreamFetchErrors, err = meter.Int64Counter(
		"upstream.fetch.errors",
		otelmetric.WithDescription("Failed upstream number fetches by reason"),
	)
	if err != nil {
		return nil, err
	}

	m.UpstreamNumbersFetched, err = meter.Int64Histogram(
		"upstream.numbers.fetched",
		otelmetric.WithDescription("Count of numbers returned per upstream fetch"),
	)
	if err != nil {
		return nil, err
	}

	// Window metrics
	m.WindowMerges, err = meter.Int64Counter(
		"window.merges",
		otelmetric.WithDescription("Merges applied to the number window"),
	)
	if err != nil {
		return nil, err
	}

	m.WindowSize, err = meter.Int64Gauge(
		"window.size",
		otelmetric.WithDescription("Current number of values held in the window"),
	)
	if err != nil {
		return nil, err
	}

	m.WindowEvictions, err = meter.Int64Counter(
		"window.evictions",
		otelmetric.WithDescription("Values dropped from the window because it was full"),
	)
	if err != nil {
		return nil, err
	}

	m.WindowDuplicatesDropped, err = meter.Int64Counter(
		"window.duplicates.dropped",
		otelmetric.WithDescription("Fetched values ignored because they were already in the window"),
	)
	if err != nil {
		return nil, err
	}

	// Seen-number tracking metrics
	m.NumbersNovel, err = meter.Int64Counter(
		"numbers.novel",
		otelmetric.WithDescription("Fetched numbers not seen within the tracking window"),
	)
	if err != nil {
		return nil, err
	}

	// Event publishing metrics
	m.EventsPublished, err = meter.Int64Counter(
		"events.published",
		otelmetric.WithDescription("Window merge events published to NATS"),
	)
	if err != nil {
		return nil, err
	}

	m.EventPublishFailures, err = meter.Int64Counter(
		"events.publish.failures",
		otelmetric.WithDescription("Window merge events that failed to publish"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

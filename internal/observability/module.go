// Package observability provides OpenTelemetry-based metrics instrumentation
// with a Prometheus exporter for the number window service.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Module holds the OTel MeterProvider and exposes a Meter for creating
// metric instruments. It is the central entry point for observability setup.
type Module struct {
	provider *sdkmetric.MeterProvider
	meter    otelmetric.Meter
	gatherer prometheus.Gatherer
}

// New creates a new observability Module backed by the default Prometheus
// registry and sets it as the global OTel MeterProvider. The serviceName is
// used as the meter scope name.
func New(serviceName string) (*Module, error) {
	m, err := NewWithRegistry(serviceName, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return nil, err
	}

	otel.SetMeterProvider(m.provider)

	return m, nil
}

// NewWithRegistry creates a Module that registers its collector with reg and
// serves metrics gathered from gatherer. Tests use a fresh registry so that
// modules do not collide on the process-wide default.
func NewWithRegistry(serviceName string, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Module, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return &Module{
		provider: provider,
		meter:    provider.Meter(serviceName),
		gatherer: gatherer,
	}, nil
}

// Shutdown gracefully shuts down the MeterProvider, flushing any remaining
// metric data.
func (m *Module) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics
// in the standard exposition format. Mount this at "/metrics".
func (m *Module) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Meter returns the OTel Meter for creating metric instruments.
func (m *Module) Meter() otelmetric.Meter {
	return m.meter
}

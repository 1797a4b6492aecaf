// Package telemetry sets up OpenTelemetry metrics exported in Prometheus
// format, Go runtime metrics, and access to the tracer used by tool calls.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"

	"github.com/marketing-connect/mcp-services/internal/version"
)

// InstrumentationName is the scope name of the meter and tracer.
const InstrumentationName = "github.com/marketing-connect/mcp-services"

// Provider owns the meter provider and the registry it is exported through.
type Provider struct {
	registry       *prometheus.Registry
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
}

// Option configures a Provider.
type Option func(*Provider)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) {
		p.tracerProvider = tp
	}
}

// New creates a Provider for serviceName and starts Go runtime metrics.
func New(serviceName string, opts ...Option) (*Provider, error) {
	p := &Provider{
		registry:       prometheus.NewRegistry(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(p)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(p.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version.Version),
	)
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	if err := runtime.Start(runtime.WithMeterProvider(p.meterProvider)); err != nil {
		_ = p.meterProvider.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to start runtime metrics: %w", err)
	}
	return p, nil
}

// Handler serves the Prometheus exposition of all recorded metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Meter returns the service meter.
func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(version.Version))
}

// Tracer returns the service tracer. Spans are dropped unless a tracer
// provider has been configured.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version.Version))
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	return nil
}

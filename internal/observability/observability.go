// Package observability wires gitlag's OTel instruments to a pull-based
// Prometheus endpoint. When disabled, all instruments are no-ops with
// zero export overhead.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const meterName = "gitlag"

// Telemetry holds the initialized metrics pipeline.
type Telemetry struct {
	// Metrics carries the gitlag instruments. Always usable; records
	// into no-op instruments when telemetry is disabled.
	Metrics *Metrics

	// Handler serves the Prometheus scrape endpoint. Nil when disabled.
	Handler http.Handler

	// Shutdown flushes pending telemetry. Must be called before exit.
	Shutdown func(ctx context.Context) error
}

func noopShutdown(_ context.Context) error { return nil }

// Setup builds the metrics pipeline. When enabled is false the returned
// Telemetry records into a no-op meter and carries no scrape handler.
// serviceVersion stamps the OTel resource; empty is allowed.
func Setup(enabled bool, serviceVersion string) (*Telemetry, error) {
	if !enabled {
		metrics, err := NewMetrics(noopmetric.NewMeterProvider().Meter(meterName))
		if err != nil {
			return nil, err
		}

		return &Telemetry{Metrics: metrics, Shutdown: noopShutdown}, nil
	}

	res, err := buildResource(serviceVersion)
	if err != nil {
		return nil, err
	}

	// A dedicated registry keeps repeated Setup calls from fighting
	// over collector registration.
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	metrics, err := NewMetrics(provider.Meter(meterName))
	if err != nil {
		shutdownErr := provider.Shutdown(context.Background())
		if shutdownErr != nil {
			return nil, fmt.Errorf("%w (shutdown: %w)", err, shutdownErr)
		}

		return nil, err
	}

	return &Telemetry{
		Metrics:  metrics,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Shutdown: provider.Shutdown,
	}, nil
}

func buildResource(serviceVersion string) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(meterName)),
	}

	if serviceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(serviceVersion)))
	}

	res, err := resource.New(context.Background(), attrs...)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

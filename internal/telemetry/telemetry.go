// Package telemetry provides OpenTelemetry tracing and metrics for ambitions.
//
// Telemetry is off unless otel.enabled is set. When off, every helper hands
// back its input unchanged and the global providers are no-ops.
//
// # Configuration
//
//	AMBITIONS_OTEL_ENABLED=true            enable telemetry (default: off)
//	AMBITIONS_OTEL_STDOUT=true             write spans and metrics to stderr
//	AMBITIONS_OTEL_METRICS_ENDPOINT=...    OTLP/HTTP metrics endpoint (host:port)
//	AMBITIONS_OTEL_SERVICE_NAME=ambitions  override the service name
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/alexanderramin/ambitions/internal/config"
)

const instrumentationScope = "github.com/alexanderramin/ambitions"

// Telemetry holds the providers every instrumented component draws from.
type Telemetry struct {
	enabled     bool
	tracers     trace.TracerProvider
	meters      metric.MeterProvider
	shutdownFns []func(context.Context) error
}

// Init configures providers from cfg and installs them globally. When
// telemetry is disabled it installs no-op providers and returns immediately.
func Init(ctx context.Context, cfg config.OTelConfig, version string) (*Telemetry, error) {
	if !cfg.Enabled {
		t := Disabled()
		otel.SetTracerProvider(t.tracers)
		otel.SetMeterProvider(t.meters)
		return t, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	tp, err := buildTraceProvider(res, cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: trace provider: %w", err)
	}
	mp, err := buildMetricProvider(ctx, res, cfg, os.Stderr)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: metric provider: %w", err)
	}
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	t := New(tp, mp)
	t.shutdownFns = append(t.shutdownFns, tp.Shutdown, mp.Shutdown)
	return t, nil
}

// New wraps existing providers. Tests use it with in-memory readers.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Telemetry {
	return &Telemetry{enabled: true, tracers: tp, meters: mp}
}

// Disabled returns a Telemetry whose helpers are pass-throughs.
func Disabled() *Telemetry {
	return &Telemetry{
		tracers: tracenoop.NewTracerProvider(),
		meters:  metricnoop.NewMeterProvider(),
	}
}

func (t *Telemetry) Enabled() bool { return t != nil && t.enabled }

func (t *Telemetry) Tracer(name string) trace.Tracer {
	if name == "" {
		name = instrumentationScope
	}
	return t.tracers.Tracer(name)
}

func (t *Telemetry) Meter(name string) metric.Meter {
	if name == "" {
		name = instrumentationScope
	}
	return t.meters.Meter(name)
}

// Shutdown flushes pending spans and metrics. Call it with a short-lived
// context on the way out.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, fn := range t.shutdownFns {
		errs = append(errs, fn(ctx))
	}
	t.shutdownFns = nil
	return errors.Join(errs...)
}

func buildTraceProvider(res *resource.Resource, cfg config.OTelConfig, w io.Writer) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	// Spans only go to stdout; a metrics-only collector is the common setup.
	if cfg.Stdout || cfg.MetricsEndpoint == "" {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func buildMetricProvider(ctx context.Context, res *resource.Resource, cfg config.OTelConfig, w io.Writer) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Stdout {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)),
		))
	}

	if cfg.MetricsEndpoint != "" {
		exp, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.MetricsEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second)),
		))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/service"
)

const serviceScopeName = "github.com/alexanderramin/ambitions/service"

type metricsObserver struct {
	runs     metric.Int64Counter
	dur      metric.Float64Histogram
	warnings metric.Int64Counter
}

// UseCaseObserver records every service use case in the ambitions.use_case.*
// metrics. Hierarchy warnings reported by a run are added to
// ambitions.hierarchy.sync_failures.
func (t *Telemetry) UseCaseObserver() service.UseCaseObserver {
	if !t.Enabled() {
		return service.NoopUseCaseObserver{}
	}
	m := t.Meter(serviceScopeName)
	runs, _ := m.Int64Counter("ambitions.use_case.runs",
		metric.WithDescription("Service use cases executed"),
	)
	dur, _ := m.Float64Histogram("ambitions.use_case.duration",
		metric.WithDescription("Service use case duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	warnings, _ := m.Int64Counter("ambitions.hierarchy.sync_failures",
		metric.WithDescription("Parent rewrites that failed after the primary write committed"),
	)
	return &metricsObserver{runs: runs, dur: dur, warnings: warnings}
}

func (o *metricsObserver) ObserveUseCase(ctx context.Context, event service.UseCaseEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("use_case", event.Name),
		attribute.Bool("success", event.Success),
	}
	if code := app.CodeOf(event.Err); code != "" {
		attrs = append(attrs, attribute.String("error_code", string(code)))
	}
	set := metric.WithAttributes(attrs...)
	o.runs.Add(ctx, 1, set)
	o.dur.Record(ctx, float64(event.Duration.Microseconds())/1000, set)

	if n, ok := event.Fields["warnings"].(int); ok && n > 0 {
		o.warnings.Add(ctx, int64(n), metric.WithAttributes(attribute.String("use_case", event.Name)))
	}
}

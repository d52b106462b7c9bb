package widget

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/goliatone/go-inlinecreate/pkg/widget"

// Submission outcomes recorded on the submissions counter.
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation"
	OutcomeTransport   = "transport"
	OutcomeApplication = "application"
	OutcomeStale       = "stale"
)

type metrics struct {
	submissions metric.Int64Counter
	duration    metric.Float64Histogram
}

func newMetrics(provider metric.MeterProvider) *metrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	submissions, err := meter.Int64Counter("inlinecreate.submissions",
		metric.WithDescription("Inline creation submit attempts by outcome."),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		submissions, _ = fallback.Int64Counter("inlinecreate.submissions")
	}
	duration, err := meter.Float64Histogram("inlinecreate.request.duration",
		metric.WithDescription("Latency of creation requests."),
		metric.WithUnit("s"),
	)
	if err != nil {
		duration, _ = fallback.Float64Histogram("inlinecreate.request.duration")
	}
	return &metrics{submissions: submissions, duration: duration}
}

func (m *metrics) outcome(ctx context.Context, model, outcome string) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) requestDuration(ctx context.Context, model string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("model", model)))
}

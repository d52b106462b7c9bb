// Package telemetry builds the OpenTelemetry meter provider used by the
// commands. Telemetry is off by default and installs a no-op provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultInterval is the export period when none is configured.
const DefaultInterval = 30 * time.Second

// ShutdownFunc flushes pending metrics and stops the exporter.
type ShutdownFunc func(context.Context) error

// New returns a meter provider exporting to w (stderr when nil) every
// interval when enabled, and a no-op provider otherwise.
func New(enabled bool, interval time.Duration, w io.Writer) (metric.MeterProvider, ShutdownFunc, error) {
	if !enabled {
		return metricnoop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}
	if w == nil {
		w = os.Stderr
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval)),
	))
	return mp, mp.Shutdown, nil
}

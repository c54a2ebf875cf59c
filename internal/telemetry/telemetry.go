package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/logging"
)

const serviceName = "tradechat"

// Chat turn outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeTimeout       = "timeout"
	OutcomeBackendError  = "backend_error"
	OutcomeTransport     = "transport_error"
	OutcomeMalformed     = "malformed"
	OutcomePersistFailed = "persist_failed"
)

// Setup builds the meter used by the chat pipeline. With metrics disabled a
// no-op meter is returned. Metrics are exported periodically as JSON to
// stdout or to a rotated file when cfg.Output is a path.
func Setup(ctx context.Context, cfg config.MetricsConfig, rotate config.RotateConfig) (metric.Meter, func(context.Context) error, error) {
	if !cfg.Enabled {
		return noop.NewMeterProvider().Meter(serviceName), func(context.Context) error { return nil }, nil
	}

	var out io.Writer = os.Stdout
	var file io.Closer
	if cfg.Output != "" && cfg.Output != "stdout" {
		rl, err := logging.NewRotatingWriter(cfg.Output, rotate)
		if err != nil {
			return nil, nil, err
		}
		out, file = rl, rl
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		res = resource.NewSchemaless(attribute.String("service.name", serviceName))
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		err := mp.Shutdown(ctx)
		if file != nil {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}

	return mp.Meter(serviceName), shutdown, nil
}

// Metrics records chat turn counters and backend latency
type Metrics struct {
	turns   metric.Int64Counter
	latency metric.Float64Histogram
}

// NewMetrics registers the chat instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	turns, err := meter.Int64Counter("chat.turns",
		metric.WithDescription("Chat turns by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create turn counter: %w", err)
	}

	latency, err := meter.Float64Histogram("chat.backend.latency",
		metric.WithDescription("Trading bot response time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	return &Metrics{turns: turns, latency: latency}, nil
}

// NopMetrics returns metrics backed by a no-op meter
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(serviceName))
	return m
}

// RecordTurn counts one chat turn and, when the backend was reached, its latency
func (m *Metrics) RecordTurn(ctx context.Context, outcome string, backendLatency time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.turns.Add(ctx, 1, attrs)
	if backendLatency > 0 {
		m.latency.Record(ctx, backendLatency.Seconds(), attrs)
	}
}

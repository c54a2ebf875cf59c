package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	meter, shutdown, err := Setup(context.Background(), config.MetricsConfig{Enabled: false}, config.RotateConfig{})
	require.NoError(t, err)
	require.NotNil(t, meter)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMetrics_RecordTurn(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTurn(ctx, OutcomeSuccess, 120*time.Millisecond)
	m.RecordTurn(ctx, OutcomeSuccess, 80*time.Millisecond)
	m.RecordTurn(ctx, OutcomeTimeout, 0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics[0].Metrics {
		found[sm.Name] = true
		if sm.Name == "chat.turns" {
			sum, ok := sm.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, int64(3), total)
		}
		if sm.Name == "chat.backend.latency" {
			hist, ok := sm.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)
			assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
		}
	}
	assert.True(t, found["chat.turns"])
	assert.True(t, found["chat.backend.latency"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.RecordTurn(context.Background(), OutcomeSuccess, time.Second) })
	assert.NotPanics(t, func() { NopMetrics().RecordTurn(context.Background(), OutcomeMalformed, 0) })
}

package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestTrackAIOperationWithTokens(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	err := m.TrackAIOperationWithTokens(ctx, "keywords", func(context.Context) *AIOperationResult {
		return &AIOperationResult{TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.TrackAIOperationWithTokens(ctx, "keywords", func(context.Context) *AIOperationResult {
		return &AIOperationResult{Error: boom}
	})
	assert.ErrorIs(t, err, boom)

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, got["apply4jobs_ai_requests_total"],
		attribute.String("operation", "keywords"), attribute.Bool("success", true)))
	assert.Equal(t, int64(1), sumFor(t, got["apply4jobs_ai_errors_total"],
		attribute.String("operation", "keywords"), attribute.Bool("success", false)))

	hist, ok := got["apply4jobs_ai_token_usage_total"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 3)
}

func TestStageAndIngestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStageOutcome(ctx, "review", "advanced")
	m.RecordStageOutcome(ctx, "review", "advanced")
	m.RecordStageOutcome(ctx, "review", "terminal")
	m.RecordIngested(ctx, "yaml", 4)
	m.RecordIngested(ctx, "yaml", 0)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, got["apply4jobs_stage_records_total"],
		attribute.String("stage", "review"), attribute.String("outcome", "advanced")))
	assert.Equal(t, int64(1), sumFor(t, got["apply4jobs_stage_records_total"],
		attribute.String("stage", "review"), attribute.String("outcome", "terminal")))
	assert.Equal(t, int64(4), sumFor(t, got["apply4jobs_applications_ingested_total"],
		attribute.String("source", "yaml")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	m.RecordStageOutcome(ctx, "dm", "skipped")
	m.RecordIngested(ctx, "yaml", 1)
	err := m.TrackAIOperationWithTokens(ctx, "summary", func(context.Context) *AIOperationResult { return nil })
	assert.NoError(t, err)
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "apply4jobs"})
	require.NoError(t, err)

	assert.Nil(t, om.GetMetrics())
	assert.NotNil(t, om.Tracer("x"))
	assert.NotNil(t, om.HTTPTransport(nil))
	assert.NoError(t, om.Shutdown(context.Background()))
}

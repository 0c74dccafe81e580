package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Metrics holds all custom instruments
type Metrics struct {
	// Generation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Workflow metrics
	StageRecords         metric.Int64Counter
	ApplicationsIngested metric.Int64Counter
}

// TokenUsage represents token usage information from generation responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// AIOperationResult holds the result of a generation call including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// NewMetrics creates all instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.AIProcessingTime, err = meter.Float64Histogram(
		"apply4jobs_ai_processing_duration_seconds",
		metric.WithDescription("Time spent in generation calls, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AIRequestCount, err = meter.Int64Counter(
		"apply4jobs_ai_requests_total",
		metric.WithDescription("Total number of generation requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.AIErrorCount, err = meter.Int64Counter(
		"apply4jobs_ai_errors_total",
		metric.WithDescription("Total number of failed generation requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"apply4jobs_ai_token_usage_total",
		metric.WithDescription("Token usage for generation requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	m.StageRecords, err = meter.Int64Counter(
		"apply4jobs_stage_records_total",
		metric.WithDescription("Records processed by a stage, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage records metric: %w", err)
	}

	m.ApplicationsIngested, err = meter.Int64Counter(
		"apply4jobs_applications_ingested_total",
		metric.WithDescription("Job postings inserted or refreshed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion metric: %w", err)
	}

	return m, nil
}

// TrackAIOperationWithTokens instruments a generation call with metrics and
// span attributes. The span itself belongs to the caller.
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if m == nil || m.AIProcessingTime == nil {
		return err
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if result != nil && result.TokenUsage != nil {
		m.recordTokenMetrics(ctx, result.TokenUsage, attrs)
		oteltrace.SpanFromContext(ctx).SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	return err
}

// recordTokenMetrics records individual token usage metrics
func (m *Metrics) recordTokenMetrics(ctx context.Context, tokenUsage *TokenUsage, attrs []attribute.KeyValue) {
	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", tokenUsage.InputTokens},
		{"output", tokenUsage.OutputTokens},
		{"total", tokenUsage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		tokenAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
		tokenAttrs = append(tokenAttrs, attrs...)
		tokenAttrs = append(tokenAttrs, attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordStageOutcome counts one processed record
func (m *Metrics) RecordStageOutcome(ctx context.Context, stage, outcome string) {
	if m == nil || m.StageRecords == nil {
		return
	}
	m.StageRecords.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

// RecordIngested counts postings written by an ingestion source
func (m *Metrics) RecordIngested(ctx context.Context, source string, n int) {
	if m == nil || m.ApplicationsIngested == nil || n == 0 {
		return
	}
	m.ApplicationsIngested.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

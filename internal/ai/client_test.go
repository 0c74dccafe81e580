package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/timjtrainor/Apply4Jobs/internal/config"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// stubBackend returns scripted results in order; the last one repeats.
type stubBackend struct {
	results []stubResult
	calls   int
}

type stubResult struct {
	text string
	err  error
}

func (s *stubBackend) Model() string { return "stub-model" }

func (s *stubBackend) Generate(ctx context.Context, prompt prompts.Prompt) (*Response, error) {
	r := s.results[min(s.calls, len(s.results)-1)]
	s.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &Response{Text: r.text}, nil
}

type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return ctx.Err()
}

func testLogger() *apperrors.Logger {
	return apperrors.NewLoggerTo(io.Discard, 0)
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Model:      "stub-model",
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Backoff:    "fixed",
	}
}

func unavailable() error {
	return &googleapi.Error{Code: http.StatusServiceUnavailable, Message: "overloaded"}
}

func testPrompt() prompts.Prompt {
	return prompts.Prompt{ID: prompts.Keywords, Segments: []string{"list keywords"}}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	backend := &stubBackend{results: []stubResult{
		{err: unavailable()},
		{err: unavailable()},
		{text: "go, sql"},
	}}
	sleeper := &fakeSleeper{}
	client := NewClient(backend, testAIConfig(), testLogger(), WithSleeper(sleeper.sleep))

	text, err := client.Generate(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "go, sql", text)
	assert.Equal(t, 3, backend.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, sleeper.waits)
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	backend := &stubBackend{results: []stubResult{{err: unavailable()}}}
	sleeper := &fakeSleeper{}
	client := NewClient(backend, testAIConfig(), testLogger(), WithSleeper(sleeper.sleep))

	_, err := client.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, 3, backend.calls)
	assert.Len(t, sleeper.waits, 2)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIRetriesExhausted))

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr), "last cause should be reachable")
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Code)
}

func TestGenerateDoesNotRetryPermanentErrors(t *testing.T) {
	backend := &stubBackend{results: []stubResult{
		{err: &googleapi.Error{Code: http.StatusBadRequest, Message: "bad prompt"}},
	}}
	sleeper := &fakeSleeper{}
	client := NewClient(backend, testAIConfig(), testLogger(), WithSleeper(sleeper.sleep))

	_, err := client.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Empty(t, sleeper.waits)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIServiceFailed))
}

func TestGenerateMinimumOneAttempt(t *testing.T) {
	cfg := testAIConfig()
	cfg.MaxRetries = 0
	backend := &stubBackend{results: []stubResult{{err: unavailable()}}}
	client := NewClient(backend, cfg, testLogger(), WithSleeper((&fakeSleeper{}).sleep))

	_, err := client.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIRetriesExhausted))
}

func TestGenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &stubBackend{results: []stubResult{{err: unavailable()}}}
	sleeper := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	client := NewClient(backend, testAIConfig(), testLogger(), WithSleeper(sleeper))

	_, err := client.Generate(ctx, testPrompt())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, backend.calls)
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		backoff string
		delay   time.Duration
		attempt int
		want    time.Duration
	}{
		{"fixed first", "fixed", 5 * time.Second, 1, 5 * time.Second},
		{"fixed later", "fixed", 5 * time.Second, 4, 5 * time.Second},
		{"exponential first", "exponential", 5 * time.Second, 1, 5 * time.Second},
		{"exponential doubles", "exponential", 5 * time.Second, 3, 20 * time.Second},
		{"exponential capped", "exponential", 5 * time.Second, 4, maxBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{delay: tt.delay, backoff: tt.backoff}
			assert.Equal(t, tt.want, c.retryDelay(tt.attempt))
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"network", timeoutErr{}, true},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"gateway timeout", &googleapi.Error{Code: http.StatusGatewayTimeout}, true},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"genai value", genai.APIError{Code: http.StatusInternalServerError}, true},
		{"genai pointer", &genai.APIError{Code: http.StatusBadGateway}, true},
		{"genai bad request", genai.APIError{Code: http.StatusBadRequest}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

// defaultBreaker mirrors the shipped ai.circuitBreaker defaults.
func defaultBreaker() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}
}

func TestBreakerDoesNotCutRetriesShort(t *testing.T) {
	cfg := testAIConfig()
	cfg.CircuitBreaker = defaultBreaker()
	backend := &stubBackend{results: []stubResult{
		{err: unavailable()}, {text: "first"},
		{err: unavailable()}, {text: "second"},
		{err: unavailable()}, {err: unavailable()}, {text: "third"},
	}}
	client := NewClient(backend, cfg, testLogger(), WithSleeper((&fakeSleeper{}).sleep))

	for _, want := range []string{"first", "second", "third"} {
		text, err := client.Generate(context.Background(), testPrompt())
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}
	assert.Equal(t, 7, backend.calls)
}

func TestBreakerOpensAfterExhaustedCalls(t *testing.T) {
	cfg := testAIConfig()
	cfg.CircuitBreaker = defaultBreaker()
	backend := &stubBackend{results: []stubResult{{err: unavailable()}}}
	client := NewClient(backend, cfg, testLogger(), WithSleeper((&fakeSleeper{}).sleep))

	for range 3 {
		_, err := client.Generate(context.Background(), testPrompt())
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIRetriesExhausted))
	}
	assert.Equal(t, 9, backend.calls)

	// every call used its full retry budget before the breaker opened
	_, err := client.Generate(context.Background(), testPrompt())
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAIServiceFailed))
	assert.Equal(t, 9, backend.calls)
}

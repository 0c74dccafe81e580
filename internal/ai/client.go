package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/timjtrainor/Apply4Jobs/internal/config"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

// Generator produces text for a prompt. Stages depend on this, not on Client.
type Generator interface {
	Generate(ctx context.Context, prompt prompts.Prompt) (string, error)
}

// Response is one successful backend call.
type Response struct {
	Text  string
	Usage *observability.TokenUsage
}

// Backend is a single, non-retrying call to the text-completion service.
type Backend interface {
	Generate(ctx context.Context, prompt prompts.Prompt) (*Response, error)
	Model() string
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client wraps a Backend with bounded retry, a circuit breaker around each
// retrying call, pacing, tracing and metrics.
type Client struct {
	backend  Backend
	attempts int
	delay    time.Duration
	backoff  string
	breaker  *CircuitBreaker
	limiter  *rate.Limiter
	sleep    Sleeper
	metrics  *observability.Metrics
	tracer   trace.Tracer
	logger   *apperrors.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithSleeper replaces the wait between attempts.
func WithSleeper(s Sleeper) Option { return func(c *Client) { c.sleep = s } }

// WithMetrics records request metrics.
func WithMetrics(m *observability.Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithTracer sets the tracer used for generation spans.
func WithTracer(t trace.Tracer) Option { return func(c *Client) { c.tracer = t } }

// NewClient binds backend to the retry policy in cfg.
func NewClient(backend Backend, cfg config.AIConfig, logger *apperrors.Logger, opts ...Option) *Client {
	c := &Client{
		backend:  backend,
		attempts: max(cfg.MaxRetries, 1),
		delay:    cfg.RetryDelay,
		backoff:  cfg.Backoff,
		breaker:  NewCircuitBreaker(backend.Model(), cfg.CircuitBreaker, logger),
		sleep:    contextSleep,
		tracer:   noop.NewTracerProvider().Tracer("apply4jobs.ai"),
		logger:   logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends prompt, retrying transient failures. Exhausting the
// attempts yields an AI_RETRIES_EXHAUSTED error wrapping the last failure.
func (c *Client) Generate(ctx context.Context, prompt prompts.Prompt) (string, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", c.backend.Model()),
		attribute.String("ai.operation", string(prompt.ID)),
	)

	var (
		text     string
		attempts int
	)
	err := c.metrics.TrackAIOperationWithTokens(ctx, string(prompt.ID), func(ctx context.Context) *observability.AIOperationResult {
		resp, err := c.breaker.Execute(func() (*Response, error) {
			resp, n, err := c.generateWithRetry(ctx, prompt)
			attempts = n
			return resp, err
		})
		if err != nil {
			return &observability.AIOperationResult{Error: c.breakerError(prompt, err)}
		}
		text = resp.Text
		return &observability.AIOperationResult{TokenUsage: resp.Usage}
	})

	span.SetAttributes(attribute.Int("ai.attempts", attempts), attribute.Bool("success", err == nil))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func (c *Client) generateWithRetry(ctx context.Context, prompt prompts.Prompt) (*Response, int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, attempt - 1, err
			}
		}

		resp, err := c.backend.Generate(ctx, prompt)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("Generation succeeded after retry",
					"operation", prompt.ID,
					"attempt", attempt)
			}
			return resp, attempt, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempt, ctxErr
		}
		if !isRetryableError(err) {
			return nil, attempt, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
				fmt.Sprintf("generation failed for %s", prompt.ID), err).
				WithContext("attempt", attempt)
		}
		if attempt == c.attempts {
			break
		}

		wait := c.retryDelay(attempt)
		c.logger.Warn("Retrying generation",
			"operation", prompt.ID,
			"attempt", attempt,
			"max_attempts", c.attempts,
			"delay", wait.String(),
			"error", err.Error())

		if err := c.sleep(ctx, wait); err != nil {
			return nil, attempt, err
		}
	}

	c.logger.LogError(lastErr, "Generation failed after all attempts",
		"operation", prompt.ID,
		"total_attempts", c.attempts)

	return nil, c.attempts, apperrors.NewAIError(apperrors.ErrCodeAIRetriesExhausted,
		fmt.Sprintf("generation for %s failed after %d attempts", prompt.ID, c.attempts), lastErr).
		WithContext("attempts", c.attempts)
}

// breakerError wraps the breaker's own rejections; errors from the call
// itself pass through unchanged.
func (c *Client) breakerError(prompt prompts.Prompt, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			fmt.Sprintf("generation for %s rejected: service is failing", prompt.ID), err).
			WithContext("model", c.backend.Model())
	}
	return err
}

// retryDelay returns the wait after the given failed attempt.
func (c *Client) retryDelay(attempt int) time.Duration {
	if c.backoff != "exponential" {
		return c.delay
	}
	d := c.delay << (attempt - 1)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// isRetryableError reports whether err is a transient service failure
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	var genaiPtrErr *genai.APIError
	if errors.As(err, &genaiPtrErr) {
		return retryableStatus(genaiPtrErr.Code)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

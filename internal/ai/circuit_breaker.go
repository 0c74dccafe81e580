package ai

import (
	"fmt"

	"github.com/timjtrainor/Apply4Jobs/internal/config"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards whole generation calls for one model. Only calls
// that exhaust their retries count as failures, so the breaker never opens
// inside a single call's retry budget.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*Response]
}

// NewCircuitBreaker returns nil when the breaker is disabled; a nil breaker
// runs calls directly.
func NewCircuitBreaker(model string, cfg config.CircuitBreakerConfig, logger *apperrors.Logger) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", model),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsSuccessful: func(err error) bool {
			return !apperrors.HasCode(err, apperrors.ErrCodeAIRetriesExhausted)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[*Response](settings)}
}

// Execute runs fn under the breaker
func (cb *CircuitBreaker) Execute(fn func() (*Response, error)) (*Response, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker rejects an operation.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings tunes a circuit breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// CircuitBreaker wraps gobreaker with metrics and a fallback hook.
type CircuitBreaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker creates a circuit breaker from the given settings.
// A nil fallback behaves like NoopFallback.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	maxRequests := settings.SuccessThreshold
	if maxRequests == 0 {
		maxRequests = 1
	}
	failureThreshold := settings.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerStateTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			breakerStateGauge.WithLabelValues(name).Set(breakerStateValue(to))
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	breakerStateGauge.WithLabelValues(name).Set(breakerStateValue(cb.State()))

	return &CircuitBreaker{
		name:     name,
		cb:       cb,
		fallback: fallback,
	}
}

// Name returns the breaker's registered name.
func (b *CircuitBreaker) Name() string {
	return b.name
}

// State returns the underlying breaker state.
func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs the operation through the breaker. When the breaker is open,
// the configured fallback decides the result.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	breakerRequestsTotal.WithLabelValues(b.name).Inc()

	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			breakerFallbacksTotal.WithLabelValues(b.name).Inc()
			return b.fallback(ctx, ErrCircuitOpen)
		}
		breakerFailuresTotal.WithLabelValues(b.name).Inc()
		return nil, err
	}

	return result, nil
}

package search

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// Breaker wraps a Backend with a circuit breaker. Failures are returned to
// the caller unchanged; while the circuit is open calls fail fast with
// gobreaker.ErrOpenState. Nothing is retried.
type Breaker struct {
	next Backend
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. A zero FailureThreshold trips after 5 consecutive failures.
func NewBreaker(name string, next Backend, cfg BreakerConfig, onStateChange func(name string, from, to gobreaker.State)) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: onStateChange,
			IsSuccessful:  isBackendSuccess,
		}),
	}
}

// State returns the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Search implements Backend
func (b *Breaker) Search(ctx context.Context, req *Request) (*Response, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Search(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Response), nil
}

// MultiSearch implements Backend
func (b *Breaker) MultiSearch(ctx context.Context, reqs []*Request) ([]*Response, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.MultiSearch(ctx, reqs)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Response), nil
}

// isBackendSuccess keeps caller cancellation and query errors from tripping the circuit.
func isBackendSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var re *ResponseError
	if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
		return true
	}
	return false
}

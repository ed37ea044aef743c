package paymentgateway

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultBreakerMaxRequests  = 3
	defaultBreakerInterval     = 30 * time.Second
	defaultBreakerTimeout      = 60 * time.Second
	defaultBreakerMinRequests  = 5
	defaultBreakerFailureRatio = 0.6
)

// StateObserver is notified when the gateway circuit changes state.
type StateObserver func(name string, from, to gobreaker.State)

type Option func(*paymentGateway)

func WithStateObserver(observer StateObserver) Option {
	return func(p *paymentGateway) {
		p.observer = observer
	}
}

func newBreaker(name string, cfg BreakerConfig, observer StateObserver) *gobreaker.CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaultBreakerMaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultBreakerInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultBreakerTimeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaultBreakerMinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = defaultBreakerFailureRatio
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		// Rejections by the provider say nothing about its health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBadRequest)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if observer != nil {
				observer(name, from, to)
			}
		},
	})
}

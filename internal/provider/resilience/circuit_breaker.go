// Package resilience wraps outbound HTTP calls with a circuit breaker,
// per-call timeouts and optional backoff retries.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Defaults for the trip policy.
const (
	DefaultMinRequests  uint32  = 5
	DefaultFailureRatio float64 = 0.5
	DefaultOpenTimeout          = 60 * time.Second
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the circuit breaker in logs and the registry.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	// Default: 1
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	// Zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	// Default: 60 seconds
	Timeout time.Duration

	// MinRequests and FailureRatio build the trip policy when ReadyToTrip
	// is nil: trip once MinRequests calls were made and at least
	// FailureRatio of them failed.
	MinRequests  uint32
	FailureRatio float64

	// ReadyToTrip overrides the ratio policy.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is called when the circuit breaker state changes.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the default configuration.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Timeout:      DefaultOpenTimeout,
		MinRequests:  DefaultMinRequests,
		FailureRatio: DefaultFailureRatio,
		ReadyToTrip:  DefaultReadyToTrip,
	}
}

// DefaultReadyToTrip trips after at least 5 requests with a failure rate
// of 50% or higher.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	return ReadyToTripAfter(DefaultMinRequests, DefaultFailureRatio)(counts)
}

// ReadyToTripAfter returns a trip policy for the given thresholds.
func ReadyToTripAfter(minRequests uint32, failureRatio float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests == 0 || counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRatio
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultOpenTimeout
	}

	readyToTrip := cfg.ReadyToTrip
	if readyToTrip == nil {
		minRequests, ratio := cfg.MinRequests, cfg.FailureRatio
		if minRequests == 0 {
			minRequests = DefaultMinRequests
		}
		if ratio <= 0 || ratio > 1 {
			ratio = DefaultFailureRatio
		}
		readyToTrip = ReadyToTripAfter(minRequests, ratio)
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   readyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}

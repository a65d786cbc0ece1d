package resilience

import (
	"context"
	"fmt"
	"math"
	"time"
)

// BackoffStrategy defines how delays grow between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by InitialDelay each attempt.
	BackoffLinear
	// BackoffConstant uses InitialDelay for every attempt.
	BackoffConstant
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// InitialDelay is the delay before the first retry. Default: 1s.
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts. Default: 16s.
	MaxDelay time.Duration

	// Multiplier scales the delay under BackoffExponential. Default: 2.
	Multiplier float64

	// Strategy selects the backoff curve. Default: BackoffExponential.
	Strategy BackoffStrategy

	// RetryIf decides whether an error is worth another attempt.
	// Default: every non-nil error.
	RetryIf func(err error) bool

	// OnRetry observes each retry before its delay elapses.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry executes operations with bounded, backoff-spaced attempts.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry policy, applying defaults to the config.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 16 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, exhausts the attempt budget, or the
// context is canceled. On exhaustion the last error is returned wrapped in
// ErrMaxRetriesExceeded; both remain matchable with errors.Is.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.Delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

// Delay returns the backoff delay following the given attempt number,
// capped at MaxDelay.
func (r *Retry) Delay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.InitialDelay
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	return delay
}

// Config returns the applied configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the sustained number of operations per second. Default: 10.
	Rate float64

	// Burst is the bucket size. Default: 5.
	Burst int
}

// RateLimiter is a token-bucket limiter for outbound API calls.
type RateLimiter struct {
	config  RateLimiterConfig
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter, applying defaults to the config.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	return &RateLimiter{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
	}
}

// Allow reports whether one operation may proceed immediately.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Wait blocks until one operation may proceed or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		// rate.Limiter reports ctx errors with its own wrapping; callers
		// only care that the limit, not the service, stopped the call.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRateLimitExceeded
	}
	return nil
}

// Config returns the applied configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}

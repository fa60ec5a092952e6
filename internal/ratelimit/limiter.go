// Package ratelimit implements sliding-window request limiting for
// the public endpoints.
package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow checks if a request from the given key should be allowed.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// LimitConfig is one window/ceiling pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// MetadataKey stores per-endpoint limit configuration in huma
// operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig attaches rate limits to a route via operation
// metadata. Multiple limits are all enforced; an empty config
// disables limiting for the endpoint.
type EndpointConfig struct {
	Limits []LimitConfig
}

// SlidingWindowLimiter enforces a set of window limits against a
// shared store. Each window tracks its own key so counts stay
// independent.
type SlidingWindowLimiter struct {
	store  Store
	limits []LimitConfig
}

// NewSlidingWindowLimiter creates a limiter over the given limits.
func NewSlidingWindowLimiter(store Store, limits ...LimitConfig) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limits: limits,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	for _, limit := range l.limits {
		count, err := l.store.Record(ctx, windowKey(key, limit.Window), limit.Window)
		if err != nil {
			return false, err
		}

		if count > limit.Max {
			return false, nil
		}
	}

	return true, nil
}

func windowKey(key string, window time.Duration) string {
	return key + ":" + window.String()
}

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"iexcloud/internal/config"
)

const (
	// DefaultProductionRate is the request rate allowed against the production origin
	DefaultProductionRate = rate.Limit(100)
	// DefaultSandboxRate is the request rate allowed against the sandbox origin
	DefaultSandboxRate = rate.Limit(10)
)

// Limiter throttles requests per origin. The production and sandbox origins
// have independent buckets, selected by the mode active at request time.
type Limiter struct {
	limiters map[config.Mode]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter allowing production and sandbox requests per second.
// rate.Inf disables limiting for that origin.
func New(production, sandbox rate.Limit) *Limiter {
	return &Limiter{
		limiters: map[config.Mode]*rate.Limiter{
			config.ModeProduction: rate.NewLimiter(production, 1),
			config.ModeTest:       rate.NewLimiter(sandbox, 1),
		},
	}
}

// NewDefault creates a limiter with the default per-origin rates.
func NewDefault() *Limiter {
	return New(DefaultProductionRate, DefaultSandboxRate)
}

// SetRate changes the rate for the origin of mode.
func (l *Limiter) SetRate(mode config.Mode, limit rate.Limit) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[mode]; exists {
		limiter.SetLimit(limit)
		return
	}
	l.limiters[mode] = rate.NewLimiter(limit, 1)
}

// Wait blocks until the limiter permits a request in the given mode.
// It returns an error if the context is canceled before the request can proceed.
func (l *Limiter) Wait(ctx context.Context, mode config.Mode) error {
	l.mu.RLock()
	limiter, exists := l.limiters[mode]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether a request in the given mode may happen now
func (l *Limiter) Allow(mode config.Mode) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[mode]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}

// Package keypool rotates a set of API keys under per-key usage quotas.
// A Pool is an explicit resource handed to the adapter that needs it; there
// is no process-wide instance. Counters reset lazily once the configured
// period has elapsed.
package keypool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/logging"
)

// DefaultLimit is the default number of uses per key per period.
const DefaultLimit = 50

// Pool hands out API keys round-robin, skipping keys that have exhausted
// their quota for the current period.
type Pool struct {
	mu        sync.Mutex
	name      string
	keys      []string
	usage     map[string]int
	limit     int
	current   int
	period    time.Duration
	lastReset time.Time
	limiter   *rate.Limiter
	now       func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithLimit sets the per-key usage quota per period.
func WithLimit(limit int) Option {
	return func(p *Pool) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithResetPeriod sets how often usage counters reset.
func WithResetPeriod(period time.Duration) Option {
	return func(p *Pool) {
		p.period = period
	}
}

// WithRateLimit throttles key checkout to the given rate per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(p *Pool) {
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// withClock injects a clock for tests.
func withClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// New creates a Pool over the given keys.
func New(name string, keys []string, opts ...Option) *Pool {
	p := &Pool{
		name:   name,
		keys:   keys,
		usage:  make(map[string]int, len(keys)),
		limit:  DefaultLimit,
		period: 24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastReset = p.now()
	return p
}

// Next returns the next key with quota remaining and counts the use. It
// waits on the pool's rate limiter first, honoring context cancellation.
func (p *Pool) Next(ctx context.Context) (string, error) {
	if len(p.keys) == 0 {
		return "", errors.ErrAPIKeyRequired
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", errors.ErrCanceled
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.maybeResetLocked()

	start := p.current
	for {
		key := p.keys[p.current]
		if p.usage[key] < p.limit {
			p.usage[key]++
			return key, nil
		}
		p.current = (p.current + 1) % len(p.keys)
		if p.current == start {
			return "", errors.ErrRateLimited
		}
	}
}

// Remaining returns the unused quota of a key in the current period.
func (p *Pool) Remaining(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maybeResetLocked()
	return max(p.limit-p.usage[key], 0)
}

// Exhaust marks a key as used up for the current period, so Next skips it
// until the next reset. Callers use this when the backend reports a quota
// breach before the local counter reaches the limit.
func (p *Pool) Exhaust(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage[key] = p.limit
}

// Reset clears all usage counters.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Pool) maybeResetLocked() {
	if p.period <= 0 {
		return
	}
	if p.now().Sub(p.lastReset) >= p.period {
		p.resetLocked()
	}
}

func (p *Pool) resetLocked() {
	logging.Debug().Str("pool", p.name).Msg("resetting key usage counters")
	p.usage = make(map[string]int, len(p.keys))
	p.lastReset = p.now()
}

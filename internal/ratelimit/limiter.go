package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter throttles crawl attempts per provider. Limiters are created
// lazily from the defaults and shared by every search hitting that provider.
type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		BurstSize:         4,
	}
}

func NewProviderLimiter(config Config) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

// Limiter returns the limiter for provider, creating it from the defaults
// on first use. Concurrent callers for the same provider get the same
// limiter, so its budget is shared across searches.
func (p *ProviderLimiter) Limiter(provider string) *rate.Limiter {
	p.mu.RLock()
	l, ok := p.limiters[provider]
	p.mu.RUnlock()
	if ok {
		return l
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok = p.limiters[provider]; !ok {
		l = rate.NewLimiter(p.limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
		p.limiters[provider] = l
	}
	return l
}

// SetProviderLimit overrides the defaults for one provider. A non-positive
// rps disables throttling for it.
func (p *ProviderLimiter) SetProviderLimit(provider string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(p.limit(rps), burst)
}

// Wait blocks until provider may receive another crawl or ctx is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.Limiter(provider).Wait(ctx)
}

func (p *ProviderLimiter) limit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

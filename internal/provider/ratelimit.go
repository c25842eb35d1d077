package provider

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limit is the throttle applied to one endpoint.
type Limit struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultLimits returns the per-endpoint throttles used when none are
// configured. The product endpoint gets a large burst so a search fan-out
// is not serialized.
func DefaultLimits() map[Endpoint]Limit {
	return map[Endpoint]Limit{
		EndpointProduct: {RequestsPerSecond: 10, Burst: 25},
		EndpointSearch:  {RequestsPerSecond: 5, Burst: 5},
		EndpointProfile: {RequestsPerSecond: 2, Burst: 4},
	}
}

// RateLimiterMap holds one rate.Limiter per endpoint, created once at startup.
type RateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[Endpoint]*rate.Limiter
}

// NewRateLimiterMap creates limiters for the default endpoint limits.
func NewRateLimiterMap() *RateLimiterMap {
	return NewRateLimiterMapWithLimits(DefaultLimits())
}

// NewRateLimiterMapWithLimits creates limiters from explicit limits. A
// non-positive rate leaves that endpoint unthrottled.
func NewRateLimiterMapWithLimits(limits map[Endpoint]Limit) *RateLimiterMap {
	m := &RateLimiterMap{
		limiters: make(map[Endpoint]*rate.Limiter, len(limits)),
	}
	for ep, l := range limits {
		if l.RequestsPerSecond <= 0 {
			continue
		}
		burst := l.Burst
		if burst < 1 {
			burst = 1
		}
		m.limiters[ep] = rate.NewLimiter(rate.Limit(l.RequestsPerSecond), burst)
	}
	return m
}

// Wait blocks until the limiter for the given endpoint allows a request,
// or the context is canceled.
func (m *RateLimiterMap) Wait(ctx context.Context, ep Endpoint) error {
	m.mu.RLock()
	limiter, ok := m.limiters[ep]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}

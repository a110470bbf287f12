package service

import (
	"context"
	"studentms/internal/domain/model"
	"sync"
	"time"
)

// StatsCache holds one computed dashboard snapshot and its computation time. It
// replaces module-level mutable cache state with an explicit component whose clock
// can be injected for tests.
type StatsCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	value      *model.DashboardStats
	computedAt time.Time
}

func NewStatsCache(ttl time.Duration) *StatsCache {
	return &StatsCache{ttl: ttl, now: time.Now}
}

// GetOrCompute returns the cached snapshot while it is fresh, otherwise runs compute
// and stores its result. The second return value reports whether the value was served
// from cache.
func (c *StatsCache) GetOrCompute(ctx context.Context, compute func(context.Context) (*model.DashboardStats, error)) (*model.DashboardStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.value != nil && now.Sub(c.computedAt) < c.ttl {
		return c.value, true, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	c.value = value
	c.computedAt = now
	return value, false, nil
}

// Invalidate drops the cached snapshot. Called after any student, department or
// section mutation.
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	c.value = nil
	c.mu.Unlock()
}

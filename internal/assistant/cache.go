package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// DefaultSnapshotTTL bounds how stale a cached snapshot may be.
const DefaultSnapshotTTL = 120 * time.Second

// Builder produces a fresh snapshot for a scope.
type Builder interface {
	Build(ctx context.Context, scope string) (Snapshot, error)
}

// SnapshotCache maps scope -> latest snapshot with TTL expiry. Entries are
// replaced wholesale, so a reader always observes a complete snapshot.
// Concurrent rebuilds for the same scope are coalesced; failed builds are
// never cached.
type SnapshotCache struct {
	log     *logger.Logger
	builder Builder
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]Snapshot
	group   singleflight.Group
}

func NewSnapshotCache(log *logger.Logger, builder Builder, ttl time.Duration) (*SnapshotCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if builder == nil {
		return nil, fmt.Errorf("builder required")
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		log:     log.With("service", "SnapshotCache"),
		builder: builder,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]Snapshot{},
	}, nil
}

func (c *SnapshotCache) GetOrBuild(ctx context.Context, scope string) (Snapshot, error) {
	if snap, ok := c.fresh(scope); ok {
		return snap, nil
	}

	v, err, _ := c.group.Do(scope, func() (any, error) {
		// A concurrent caller may have refreshed while we waited on the
		// flight lock.
		if snap, ok := c.fresh(scope); ok {
			return snap, nil
		}
		snap, err := c.builder.Build(ctx, scope)
		if err != nil {
			return Snapshot{}, err
		}
		c.mu.Lock()
		c.entries[scope] = snap
		c.mu.Unlock()
		c.log.Debug("Snapshot rebuilt", "scope", scope, "chars", len(snap.Text))
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Invalidate removes the scope's entry unconditionally, forcing the next
// GetOrBuild to rebuild. Callers that mutate shift or roster data are
// expected to invoke it.
func (c *SnapshotCache) Invalidate(scope string) {
	c.mu.Lock()
	delete(c.entries, scope)
	c.mu.Unlock()
}

func (c *SnapshotCache) fresh(scope string) (Snapshot, bool) {
	c.mu.RLock()
	snap, ok := c.entries[scope]
	c.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	if c.now().Sub(snap.BuiltAt) >= c.ttl {
		return Snapshot{}, false
	}
	return snap, true
}

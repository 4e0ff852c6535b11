// Package query caches collection reads by key and drops them when a
// mutation invalidates the key. Concurrent reads of the same key share one
// fetch.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Collection keys.
const (
	KeyAdminUsers     = "admin-users"
	KeyLanguages      = "languages"
	KeyAdminLanguages = "admin-languages"
	KeyRoles          = "roles"
	KeyPermissions    = "permissions"
	KeyUsersWithRoles = "users-with-roles"
	KeyBackups        = "backups"
	KeySnapshots      = "snapshots"
)

type entry struct {
	value   any
	fetched time.Time
}

type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	gen     map[string]uint64
	group   singleflight.Group
}

// New returns a cache whose entries expire after ttl. A zero ttl keeps
// entries until they are invalidated.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
		gen:     make(map[string]uint64),
	}
}

func (c *Cache) lookup(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && c.ttl > 0 && c.now().Sub(e.fetched) > c.ttl {
		delete(c.entries, key)
		ok = false
	}
	return e.value, c.gen[key], ok
}

// store keeps v unless key was invalidated while it was being fetched.
func (c *Cache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[key] != gen {
		return
	}
	c.entries[key] = entry{value: v, fetched: c.now()}
}

// Invalidate drops the keys. Fetches already in flight for them will not
// populate the cache.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.gen[k]++
	}
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		c.gen[k]++
	}
	c.entries = make(map[string]entry)
}

// Fetch returns the cached value for key or loads it with fn. Errors are
// not cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	cached, gen, ok := c.lookup(key)
	if ok {
		if t, ok := cached.(T); ok {
			return t, nil
		}
	}

	flightKey := fmt.Sprintf("%s#%d", key, gen)

	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		t, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, t)
		return t, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Package cache implements the TTL-aware coordinator over the shared
// persistent cache table. Caching is an optimization, not a correctness
// dependency: every store failure degrades to a miss or a no-op, and the
// caller's primary operation proceeds regardless.
package cache

import (
	"context"
	"encoding/json"
	"time"

	Logger "github.com/disasterlabs/beacon/utils/log"
)

// DefaultTTL applies when Set is called with a negative ttl sentinel.
const DefaultTTL = time.Hour

// Store is the persistent key/value table consumed by the coordinator.
// Select returns ErrNotFound when the key is absent.
type Store interface {
	Select(ctx context.Context, key string) (value []byte, expiresAt time.Time, err error)
	Upsert(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
}

type Coordinator struct {
	store Store

	// now is swapped out in tests to pin expiry behavior.
	now func() time.Time
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{store: store, now: time.Now}
}

// Get looks up key and decodes the stored value into out. It returns false
// (a miss) when the key is absent, expired, undecodable or the store read
// fails. An entry whose expiry is not in the future is lazily evicted before
// the miss is reported; there is no background sweep.
func (c *Coordinator) Get(ctx context.Context, key string, out interface{}) bool {
	value, expiresAt, err := c.store.Select(ctx, key)
	if err == ErrNotFound {
		return false
	}
	if err != nil {
		Logger.Log.Errorf("cache read error for key %s: %v", key, err)
		return false
	}

	if !expiresAt.After(c.now()) {
		if err := c.store.Delete(ctx, key); err != nil {
			Logger.Log.Errorf("cache evict error for key %s: %v", key, err)
		}
		Logger.Log.Debugf("cache expired: %s", key)
		return false
	}

	if err := json.Unmarshal(value, out); err != nil {
		Logger.Log.Errorf("cache decode error for key %s: %v", key, err)
		return false
	}
	Logger.Log.Debugf("cache hit: %s", key)
	return true
}

// Set upserts the entry with expiry now+ttl, overwriting any previous value
// (last-write-wins). A zero ttl writes an already-expired entry: the next
// Get reports a miss and evicts it. A negative ttl falls back to
// DefaultTTL. Failures are logged and swallowed.
func (c *Coordinator) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl < 0 {
		ttl = DefaultTTL
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		Logger.Log.Errorf("cache encode error for key %s: %v", key, err)
		return
	}
	if err := c.store.Upsert(ctx, key, encoded, c.now().Add(ttl)); err != nil {
		Logger.Log.Errorf("cache write error for key %s: %v", key, err)
		return
	}
	Logger.Log.Debugf("cache set: %s ttl: %s", key, ttl)
}

// Invalidate unconditionally deletes the entry. Deleting an absent key is
// not an error.
func (c *Coordinator) Invalidate(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		Logger.Log.Errorf("cache delete error for key %s: %v", key, err)
	}
}

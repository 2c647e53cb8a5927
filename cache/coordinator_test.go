package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

// fakeStore is an in-memory Store with switchable failure injection.
type fakeStore struct {
	entries map[string]fakeEntry
	failing bool

	selectCalls int
	deleteCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]fakeEntry{}}
}

func (s *fakeStore) Select(ctx context.Context, key string) ([]byte, time.Time, error) {
	s.selectCalls++
	if s.failing {
		return nil, time.Time{}, errors.New("store unavailable")
	}
	entry, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return entry.value, entry.expiresAt, nil
}

func (s *fakeStore) Upsert(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	s.entries[key] = fakeEntry{value: value, expiresAt: expiresAt}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.deleteCalls++
	if s.failing {
		return errors.New("store unavailable")
	}
	delete(s.entries, key)
	return nil
}

func TestGetSetRoundtrip(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	coordinator.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute)

	var out map[string]string
	require.True(t, coordinator.Get(ctx, "k", &out))
	assert.Equal(t, "b", out["a"])

	// Repeated reads of a non-expired key keep hitting.
	require.True(t, coordinator.Get(ctx, "k", &out))
}

func TestGetMissOnAbsentKey(t *testing.T) {
	coordinator := NewCoordinator(newFakeStore())

	var out string
	assert.False(t, coordinator.Get(context.Background(), "nope", &out))
}

func TestExpiredEntryIsMissAndEvicted(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	coordinator.Set(ctx, "k", "v", time.Minute)

	// Jump the coordinator clock past the expiry.
	coordinator.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	var out string
	assert.False(t, coordinator.Get(ctx, "k", &out))
	// Lazy eviction removed the row.
	_, ok := store.entries["k"]
	assert.False(t, ok)
	assert.Equal(t, 1, store.deleteCalls)
}

func TestNegativeTTLFallsBackToDefault(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	coordinator.Set(ctx, "k", "v", -1)

	entry := store.entries["k"]
	assert.True(t, entry.expiresAt.After(time.Now().Add(DefaultTTL-time.Minute)))
}

func TestZeroTTLIsImmediateMissAndEvicted(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	coordinator.Set(ctx, "k", "v", 0)

	var out string
	assert.False(t, coordinator.Get(ctx, "k", &out))
	_, stillThere := store.entries["k"]
	assert.False(t, stillThere)
}

func TestStoreFailureIsMissNotError(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	store.failing = true

	// Writes are swallowed, reads degrade to a miss.
	coordinator.Set(ctx, "k", "v", time.Minute)
	var out string
	assert.False(t, coordinator.Get(ctx, "k", &out))
	coordinator.Invalidate(ctx, "k")
}

func TestInvalidateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store)
	ctx := context.Background()

	coordinator.Set(ctx, "k", "v", time.Minute)
	coordinator.Invalidate(ctx, "k")
	coordinator.Invalidate(ctx, "k")

	var out string
	assert.False(t, coordinator.Get(ctx, "k", &out))
}

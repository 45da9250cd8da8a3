package diffcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchwatch/revdiff/internal/core/diff"
)

type memStore struct {
	entries []Entry
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) ([]Entry, error) {
	return m.entries, m.loadErr
}

func (m *memStore) Save(_ context.Context, entries []Entry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = entries
	return nil
}

// fixedClock returns a controllable now func.
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestCache_PutThenLookup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	cache := New(store, DefaultTTL, fixedClock(&now))

	res := diff.Result{Text: "diff body", Count: 3, FetchedAt: now}
	cache.Put(ctx, "run-1", false, res)

	got, ok := cache.Lookup(ctx, "run-1", false)
	require.True(t, ok)
	assert.Equal(t, res, got)

	// The master variant is a distinct cache key.
	_, ok = cache.Lookup(ctx, "run-1", true)
	assert.False(t, ok)
}

func TestCache_ExpiredEntryNotReturned(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	cache := New(store, DefaultTTL, fixedClock(&now))

	cache.Put(ctx, "run-1", false, diff.Result{Text: "stale"})

	// Just inside the window.
	now = now.Add(23 * time.Hour)
	_, ok := cache.Lookup(ctx, "run-1", false)
	assert.True(t, ok)

	// Past the window: present in storage but never returned.
	now = now.Add(2 * time.Hour)
	_, ok = cache.Lookup(ctx, "run-1", false)
	assert.False(t, ok)
	assert.Len(t, store.entries, 1)
}

func TestCache_PutDeduplicatesKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	cache := New(store, DefaultTTL, fixedClock(&now))

	cache.Put(ctx, "run-1", false, diff.Result{Text: "first"})
	cache.Put(ctx, "run-1", false, diff.Result{Text: "second"})
	cache.Put(ctx, "run-1", true, diff.Result{Text: "variant"})

	// One live entry per (run, variant) key.
	require.Len(t, store.entries, 2)

	got, ok := cache.Lookup(ctx, "run-1", false)
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)
}

func TestCache_PutPrunesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	cache := New(store, DefaultTTL, fixedClock(&now))

	cache.Put(ctx, "old-run", false, diff.Result{Text: "old"})

	now = now.Add(25 * time.Hour)
	cache.Put(ctx, "new-run", false, diff.Result{Text: "new"})

	require.Len(t, store.entries, 1)
	assert.Equal(t, "new-run", store.entries[0].RunID)
}

func TestCache_StoreFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{saveErr: errors.New("quota exceeded")}
	cache := New(store, DefaultTTL, fixedClock(&now))

	// Must not panic or propagate; diff display proceeds without cache.
	cache.Put(ctx, "run-1", false, diff.Result{Text: "body"})
	assert.Equal(t, 1, store.saves)
}

func TestCache_LoadFailureIsMiss(t *testing.T) {
	ctx := context.Background()
	store := &memStore{loadErr: errors.New("corrupt")}
	cache := New(store, DefaultTTL, nil)

	_, ok := cache.Lookup(ctx, "run-1", false)
	assert.False(t, ok)
}

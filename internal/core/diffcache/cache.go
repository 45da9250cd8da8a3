// Package diffcache is the time-boxed, client-persisted cache of diff
// results, keyed by run identity. It is consulted before any network
// call; a hit skips strategy selection entirely for that view.
package diffcache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/benchwatch/revdiff/internal/core/diff"
	"github.com/benchwatch/revdiff/internal/core/logging"
)

// DefaultTTL is the freshness window during which a cached diff is
// served without re-fetching.
const DefaultTTL = 24 * time.Hour

// Entry is one persisted cache record.
type Entry struct {
	RunID         string      `json:"run_id"`
	MasterVariant bool        `json:"master_variant"`
	Result        diff.Result `json:"result"`
	SavedAt       time.Time   `json:"saved_at"`
}

// Store persists the whole entry collection at once. Implementations
// read and write the collection wholesale; no partial-record indexing is
// assumed.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Cache wraps a Store with the freshness-window policy. The clock is
// injected so expiry is testable without real time passing.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// New creates a cache over store. A non-positive ttl falls back to
// DefaultTTL; a nil clock falls back to time.Now.
func New(store Store, ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{store: store, ttl: ttl, now: now, log: logging.Component("diffcache")}
}

// Lookup returns the live cached result for (runID, masterVariant).
// Entries older than the freshness window are filtered out before
// matching, never returned. Load failures degrade to a miss.
func (c *Cache) Lookup(ctx context.Context, runID string, masterVariant bool) (diff.Result, bool) {
	entries, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache load failed; treating as miss")
		return diff.Result{}, false
	}

	cutoff := c.now().Add(-c.ttl)
	for _, entry := range entries {
		if entry.SavedAt.Before(cutoff) {
			continue
		}
		if entry.RunID == runID && entry.MasterVariant == masterVariant {
			return entry.Result, true
		}
	}
	return diff.Result{}, false
}

// Put writes through a freshly fetched result. Expired entries and any
// previous entry under the same (runID, masterVariant) key are dropped
// first, so the collection holds at most one live entry per key.
//
// Persistence failures are logged and swallowed by contract: the result
// is already in hand and the view must proceed without the cache.
func (c *Cache) Put(ctx context.Context, runID string, masterVariant bool, res diff.Result) {
	entries, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache load failed; rewriting from scratch")
		entries = nil
	}

	now := c.now()
	cutoff := now.Add(-c.ttl)

	kept := make([]Entry, 0, len(entries)+1)
	for _, entry := range entries {
		if entry.SavedAt.Before(cutoff) {
			continue
		}
		if entry.RunID == runID && entry.MasterVariant == masterVariant {
			continue
		}
		kept = append(kept, entry)
	}
	kept = append(kept, Entry{RunID: runID, MasterVariant: masterVariant, Result: res, SavedAt: now})

	if err := c.store.Save(ctx, kept); err != nil {
		c.log.Warn().Err(err).Str("run", runID).Msg("cache store failed; continuing without cache")
	}
}

// Package revdiff orchestrates the run detail view's diff engine:
// cache consultation, strategy selection, fetching and classification.
package revdiff

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/benchwatch/revdiff/internal/core/diff"
	"github.com/benchwatch/revdiff/internal/core/diffcache"
	"github.com/benchwatch/revdiff/internal/core/logging"
	"github.com/benchwatch/revdiff/internal/core/present"
	"github.com/benchwatch/revdiff/internal/core/run"
)

// API is the hosting-API surface the service consumes.
type API interface {
	diff.Source
	diff.RangeSource
}

// Service resolves diff views for runs.
type Service struct {
	cache   *diffcache.Cache
	twoTree *diff.TwoTreeDiffer
	ranged  *diff.RangeDiffer
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a service over api and cache. A nil clock falls
// back to time.Now.
func NewService(api API, cache *diffcache.Cache, opts diff.TwoTreeOptions, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		cache:   cache,
		twoTree: diff.NewTwoTreeDiffer(api, opts),
		ranged:  diff.NewRangeDiffer(api),
		now:     now,
		log:     logging.Component("revdiff"),
	}
}

// View resolves the diff view for a run. The cache is consulted before
// any network call; a hit skips strategy selection entirely for this
// view. masterVariant selects the base-vs-master comparison instead of
// the run's own base-vs-new pair.
//
// Failures never propagate as errors: they classify into a degraded
// view so the rest of the page stays functional.
func (s *Service) View(ctx context.Context, r run.Run, masterVariant bool) present.View {
	ctx = logging.WithRunID(ctx, r.ID)

	if res, ok := s.cache.Lookup(ctx, r.ID, masterVariant); ok {
		s.log.Debug().Ctx(ctx).Bool("master_variant", masterVariant).Msg("cache hit")
		return present.FromResult(res)
	}

	res, err := s.fetch(ctx, r, masterVariant)
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("diff fetch failed")
		return present.FromError(err)
	}

	// Write-through on success only; a failed fetch is never cached.
	s.cache.Put(ctx, r.ID, masterVariant, res)
	return present.FromResult(res)
}

func (s *Service) fetch(ctx context.Context, r run.Run, masterVariant bool) (diff.Result, error) {
	now := s.now()

	if masterVariant {
		// The variant compares the run's base against the base
		// repository's master branch. Both live in one lineage, so it
		// is always a range diff.
		return s.ranged.Diff(ctx, r.BaseRepo, "master", r.BaseShort(), now)
	}

	strategy := run.SelectStrategy(r)
	s.log.Debug().Ctx(ctx).Stringer("strategy", strategy).Msg("diff strategy selected")

	switch strategy {
	case run.Range:
		return s.ranged.Diff(ctx, r.NewRepo, r.BaseRevision, r.NewRevision, now)
	default:
		return s.twoTree.Diff(ctx, r.BaseRepo, r.BaseRevision, r.NewRepo, r.NewRevision, now)
	}
}

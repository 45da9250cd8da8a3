package diff

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/benchwatch/revdiff/internal/core/logging"
)

// RangeSource is the API surface the range differ consumes.
type RangeSource interface {
	// Compare returns the API-rendered diff for "base...head".
	Compare(ctx context.Context, repo, base, head string) (string, error)
	// CommentCount sums review comments over the commit list for ref.
	CommentCount(ctx context.Context, repo, ref string) (int, error)
}

// RangeDiffer requests a precomputed commit-range diff from the hosting
// API. It applies when base and new share ancestry in one repository; the
// API's own diff computation is trusted and nothing is reconciled
// locally.
type RangeDiffer struct {
	src RangeSource
	log zerolog.Logger
}

// NewRangeDiffer creates a differ over src.
func NewRangeDiffer(src RangeSource) *RangeDiffer {
	return &RangeDiffer{src: src, log: logging.Component("rangediff")}
}

// Diff fetches the rendered diff document and the commit list for the
// head revision concurrently. Count is the number of rendered lines.
// Either fetch failing aborts the whole operation.
func (d *RangeDiffer) Diff(ctx context.Context, repo, base, head string, now time.Time) (Result, error) {
	var (
		text     string
		comments int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rendered, err := d.src.Compare(gctx, repo, base, head)
		text = rendered
		return err
	})
	g.Go(func() error {
		count, err := d.src.CommentCount(gctx, repo, head)
		comments = count
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	count := countLines(text)
	d.log.Debug().Str("repo", repo).Int("lines", count).Int("comments", comments).Msg("range diff fetched")

	if count == 0 {
		return Result{Text: NoDiffAvailable, Comments: comments, FetchedAt: now}, nil
	}
	return Result{Text: text, Count: count, Comments: comments, FetchedAt: now}, nil
}

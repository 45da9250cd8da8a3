package diff

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/benchwatch/revdiff/internal/core/logging"
)

// TreeFetcher retrieves the recursive path → content hash listing for a
// revision.
type TreeFetcher interface {
	Tree(ctx context.Context, repo, rev string) (map[string]string, error)
}

// ContentResolver retrieves raw file content at a revision. Absent paths
// resolve to the empty string, not an error.
type ContentResolver interface {
	Contents(ctx context.Context, repo, path, rev string) (string, error)
}

// Source is the API surface the two-tree differ consumes.
type Source interface {
	TreeFetcher
	ContentResolver
}

// TwoTreeOptions tune the local diff reconstruction.
type TwoTreeOptions struct {
	// ContextLines is the unified-diff context size.
	ContextLines int
	// MinFragmentLines drops fragments whose body has fewer non-blank
	// lines than this.
	MinFragmentLines int
	// Ignore holds doublestar globs for paths excluded from the diff,
	// typically opening books and other binary payloads.
	Ignore []string
	// ContentWorkers bounds concurrent content requests. Zero means the
	// default of 8.
	ContentWorkers int
}

// TwoTreeDiffer reconstructs a unified diff by comparing two
// independently fetched tree snapshots. It is the fallback for runs whose
// base and new revisions live in unrelated repositories.
type TwoTreeDiffer struct {
	src  Source
	opts TwoTreeOptions
	log  zerolog.Logger
}

// NewTwoTreeDiffer creates a differ over src.
func NewTwoTreeDiffer(src Source, opts TwoTreeOptions) *TwoTreeDiffer {
	if opts.ContextLines <= 0 {
		opts.ContextLines = DefaultContextLines
	}
	if opts.MinFragmentLines <= 0 {
		opts.MinFragmentLines = DefaultMinFragmentLines
	}
	if opts.ContentWorkers <= 0 {
		opts.ContentWorkers = 8
	}
	return &TwoTreeDiffer{src: src, opts: opts, log: logging.Component("twotree")}
}

// Diff fetches both trees concurrently, drops paths whose content hash
// matches on both sides, resolves the surviving pairs, and concatenates
// the per-file unified diffs in sorted path order. Any fetch failure
// aborts the whole computation; no partial result is returned.
func (d *TwoTreeDiffer) Diff(ctx context.Context, baseRepo, baseRev, newRepo, newRev string, now time.Time) (Result, error) {
	var baseTree, newTree map[string]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tree, err := d.src.Tree(gctx, baseRepo, baseRev)
		baseTree = tree
		return err
	})
	g.Go(func() error {
		tree, err := d.src.Tree(gctx, newRepo, newRev)
		newTree = tree
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	paths := d.changedPaths(baseTree, newTree)
	d.log.Debug().
		Int("base_files", len(baseTree)).
		Int("new_files", len(newTree)).
		Int("changed", len(paths)).
		Msg("tree snapshots compared")

	type pair struct {
		base    string
		updated string
	}
	contents := make([]pair, len(paths))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(d.opts.ContentWorkers)
	for i, path := range paths {
		g.Go(func() error {
			content, err := d.src.Contents(gctx, baseRepo, path, baseRev)
			contents[i].base = content
			return err
		})
		g.Go(func() error {
			content, err := d.src.Contents(gctx, newRepo, path, newRev)
			contents[i].updated = content
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var text strings.Builder
	count := 0
	for i, path := range paths {
		body, err := Unified(path, contents[i].base, contents[i].updated, d.opts.ContextLines)
		if err != nil {
			return Result{}, err
		}
		if !keepFragment(body, d.opts.MinFragmentLines) {
			continue
		}
		text.WriteString(body)
		count++
	}

	if count == 0 {
		return Result{Text: NoDiffAvailable, FetchedAt: now}, nil
	}
	return Result{Text: text.String(), Count: count, FetchedAt: now}, nil
}

// changedPaths returns the sorted union of paths whose content hash
// differs between the trees, minus ignored paths. Hash equality is the
// sole "unchanged" criterion; equal-hash files are never fetched.
func (d *TwoTreeDiffer) changedPaths(baseTree, newTree map[string]string) []string {
	seen := make(map[string]struct{}, len(baseTree)+len(newTree))
	var paths []string

	consider := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}

		baseHash, inBase := baseTree[path]
		newHash, inNew := newTree[path]
		if inBase && inNew && baseHash == newHash {
			return
		}
		if d.ignored(path) {
			return
		}
		paths = append(paths, path)
	}

	for path := range baseTree {
		consider(path)
	}
	for path := range newTree {
		consider(path)
	}

	sort.Strings(paths)
	return paths
}

func (d *TwoTreeDiffer) ignored(path string) bool {
	for _, glob := range d.opts.Ignore {
		if ok, err := doublestar.Match(glob, path); err == nil && ok {
			return true
		}
	}
	return false
}

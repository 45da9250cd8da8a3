package diff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves trees and contents from in-memory maps and counts
// requests so tests can assert what was actually fetched.
type fakeSource struct {
	mu       sync.Mutex
	trees    map[string]map[string]string // "repo@rev" -> path -> hash
	contents map[string]string            // "repo@rev:path" -> content
	treeErr  error

	treeCalls    int
	contentCalls []string
}

func (f *fakeSource) Tree(_ context.Context, repo, rev string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeCalls++
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	tree, ok := f.trees[repo+"@"+rev]
	if !ok {
		return nil, fmt.Errorf("no tree for %s@%s", repo, rev)
	}
	return tree, nil
}

func (f *fakeSource) Contents(_ context.Context, repo, path, rev string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := repo + "@" + rev + ":" + path
	f.contentCalls = append(f.contentCalls, key)
	return f.contents[key], nil // absent paths resolve to ""
}

// lines builds file content with n numbered lines.
func lines(prefix string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s line %d\n", prefix, i)
	}
	return b.String()
}

func TestTwoTreeDiffer_OnlyChangedPathDiffed(t *testing.T) {
	src := &fakeSource{
		trees: map[string]map[string]string{
			"base/repo@rev1": {"a": "h1", "b": "h2"},
			"new/repo@rev2":  {"a": "h1", "b": "h3"},
		},
		contents: map[string]string{
			"base/repo@rev1:b": lines("old", 8),
			"new/repo@rev2:b":  lines("new", 8),
		},
	}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{})
	res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.Contains(t, res.Text, "a/b")
	assert.NotContains(t, res.Text, "a/a")

	// Path "a" is hash-equal on both sides and must never be fetched.
	for _, call := range src.contentCalls {
		assert.NotContains(t, call, ":a")
	}
}

func TestTwoTreeDiffer_DeletedPathDiffsAgainstEmpty(t *testing.T) {
	src := &fakeSource{
		trees: map[string]map[string]string{
			"base/repo@rev1": {"a": "h1"},
			"new/repo@rev2":  {},
		},
		contents: map[string]string{
			"base/repo@rev1:a": lines("old", 10),
		},
	}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{})
	res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.NoError(t, err)

	// The new side resolves to the empty string, so the fragment is a
	// pure deletion.
	assert.Equal(t, 1, res.Count)
	assert.Contains(t, res.Text, "-old line 0")
}

func TestTwoTreeDiffer_EqualTreesYieldSentinel(t *testing.T) {
	tree := map[string]string{"a": "h1", "b": "h2"}
	src := &fakeSource{
		trees: map[string]map[string]string{
			"base/repo@rev1": tree,
			"new/repo@rev2":  tree,
		},
	}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{})
	res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, NoDiffAvailable, res.Text)
	assert.Zero(t, res.Count)
	assert.Empty(t, src.contentCalls)
}

func TestTwoTreeDiffer_FragmentSuppression(t *testing.T) {
	tests := []struct {
		name string
		min  int
		kept bool
	}{
		{name: "body below threshold dropped", min: 6, kept: false},
		{name: "body at threshold kept", min: 5, kept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				trees: map[string]map[string]string{
					"base/repo@rev1": {"f": "h1"},
					"new/repo@rev2":  {"f": "h2"},
				},
				contents: map[string]string{
					"base/repo@rev1:f": "one\n",
					"new/repo@rev2:f":  "two\n",
				},
			}

			// The fragment body here is exactly 5 non-blank lines:
			// ---, +++, @@, -one, +two.
			d := NewTwoTreeDiffer(src, TwoTreeOptions{ContextLines: 1, MinFragmentLines: tt.min})
			res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
			require.NoError(t, err)

			if tt.kept {
				assert.Equal(t, 1, res.Count)
			} else {
				assert.Zero(t, res.Count)
				assert.Equal(t, NoDiffAvailable, res.Text)
			}
		})
	}
}

func TestTwoTreeDiffer_FragmentPathsSubsetOfChangedUnion(t *testing.T) {
	src := &fakeSource{
		trees: map[string]map[string]string{
			"base/repo@rev1": {"same": "h0", "changed": "h1", "deleted": "h2"},
			"new/repo@rev2":  {"same": "h0", "changed": "h9", "added": "h3"},
		},
		contents: map[string]string{
			"base/repo@rev1:changed": lines("old", 6),
			"new/repo@rev2:changed":  lines("new", 6),
			"base/repo@rev1:deleted": lines("gone", 6),
			"new/repo@rev2:added":    lines("fresh", 6),
		},
	}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{})
	res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	assert.NotContains(t, res.Text, "a/same")
	for _, call := range src.contentCalls {
		assert.NotContains(t, call, ":same")
	}
}

func TestTwoTreeDiffer_IgnoreGlobs(t *testing.T) {
	src := &fakeSource{
		trees: map[string]map[string]string{
			"base/repo@rev1": {"src/a.cpp": "h1", "books/noob.epd": "h2"},
			"new/repo@rev2":  {"src/a.cpp": "h3", "books/noob.epd": "h4"},
		},
		contents: map[string]string{
			"base/repo@rev1:src/a.cpp": lines("old", 6),
			"new/repo@rev2:src/a.cpp":  lines("new", 6),
		},
	}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{Ignore: []string{"books/**"}})
	res, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count)
	assert.NotContains(t, res.Text, "noob.epd")
}

func TestTwoTreeDiffer_TreeFailureAborts(t *testing.T) {
	src := &fakeSource{treeErr: errors.New("boom")}

	d := NewTwoTreeDiffer(src, TwoTreeOptions{})
	_, err := d.Diff(context.Background(), "base/repo", "rev1", "new/repo", "rev2", time.Now())
	require.Error(t, err)
}

// Package diff assembles the textual difference between two revisions of
// a source tree, either reconstructed locally from two tree snapshots or
// requested precomputed from the hosting API.
package diff

import (
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// NoDiffAvailable is the sentinel result text used when the comparison
// produced nothing to show.
const NoDiffAvailable = "No diff available"

// Defaults applied when an option is left at its zero value.
const (
	DefaultContextLines     = 3
	DefaultMinFragmentLines = 5
)

// Result is the assembled diff handed to the presenter and cached as a
// unit. Count is the number of fragments for a two-tree diff and the
// number of rendered lines for a range diff.
type Result struct {
	Text      string    `json:"text"`
	Count     int       `json:"count"`
	Comments  int       `json:"comments"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fragment is the per-file unified diff body for one changed path.
type Fragment struct {
	Path string
	Body string
}

// Unified renders a git-style unified diff fragment for one path.
// Identical contents render as the empty string.
func Unified(path, base, updated string, contextLines int) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(base),
		B:        difflib.SplitLines(updated),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// keepFragment reports whether a fragment body carries enough signal to
// show. Bodies with fewer than min non-blank lines are noise, typically
// whitespace-only churn surviving the hash check.
func keepFragment(body string, min int) bool {
	lines := 0
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	return lines >= min
}

// countLines counts rendered lines in a range-diff document.
func countLines(text string) int {
	trimmed := strings.TrimRight(text, "\n")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

// Package run defines the test-run descriptor consumed from the
// orchestration system and the rules for choosing a diff strategy.
package run

// Run describes a single test run as reported by the orchestration system.
// Revisions are git object names; abbreviated forms are accepted and
// resolved by the hosting API.
type Run struct {
	ID string `json:"run_id"`

	BaseRevision      string `json:"base_revision"`
	BaseRevisionShort string `json:"base_revision_short,omitempty"`
	NewRevision       string `json:"new_revision"`

	// Repository locators in "owner/name" form. BaseRepo and NewRepo
	// may point at two unrelated forks.
	BaseRepo string `json:"base_repo"`
	NewRepo  string `json:"new_repo"`

	// Tuning marks parameter-tuning runs, which always compare
	// revisions within a single repository lineage.
	Tuning bool `json:"tuning"`

	// SharedHistory is set when base and new share ancestry in one
	// repository, so the hosting API can compute the range diff itself.
	SharedHistory bool `json:"shared_history"`
}

// BaseShort returns the abbreviated base revision, falling back to the
// full form when the orchestrator did not include one.
func (r Run) BaseShort() string {
	if r.BaseRevisionShort != "" {
		return r.BaseRevisionShort
	}
	return r.BaseRevision
}

// Strategy identifies how the diff between base and new is obtained.
type Strategy int

const (
	// TwoTree reconstructs the diff locally from two independently
	// fetched tree snapshots.
	TwoTree Strategy = iota
	// Range asks the hosting API for a precomputed A...B diff.
	Range
)

func (s Strategy) String() string {
	switch s {
	case TwoTree:
		return "two-tree"
	case Range:
		return "range"
	default:
		return "unknown"
	}
}

// SelectStrategy picks the diff strategy for a run. Tuning runs and runs
// whose revisions share history use the API's own range diff; everything
// else falls back to the two-tree reconstruction. Pure function, decided
// once per view.
func SelectStrategy(r Run) Strategy {
	if r.Tuning || r.SharedHistory {
		return Range
	}
	return TwoTree
}

// Package present maps diff-engine outcomes onto the view consumed by
// the renderer: the diff text, counts, and the degraded state with its
// user-facing diagnostic when the engine failed.
package present

import (
	"github.com/benchwatch/revdiff/internal/core/diff"
	"github.com/benchwatch/revdiff/internal/core/githubapi"
)

// User-facing diagnostics for classified failures. Rate-limit guidance
// is distinct from authorization guidance.
const (
	MsgAuthorization = "Diff unavailable: the hosting API rejected the request. Supply or renew an API token and reload."
	MsgRateLimited   = "Diff unavailable: the hosting API rate limit is exhausted. Wait for the window to reset or supply an API token."
)

// View is the presenter surface for the diff section of a run page. A
// degraded view hides the comparison toggle; the only retry is a fresh
// page load. The rest of the page stays fully functional either way.
type View struct {
	Text       string `json:"text"`
	Count      int    `json:"count"`
	Comments   int    `json:"comments"`
	Degraded   bool   `json:"degraded"`
	Diagnostic string `json:"diagnostic,omitempty"`
	ShowToggle bool   `json:"show_toggle"`
}

// FromResult builds the healthy view for a fetched or cached result.
func FromResult(res diff.Result) View {
	return View{
		Text:       res.Text,
		Count:      res.Count,
		Comments:   res.Comments,
		ShowToggle: true,
	}
}

// FromError classifies a failure into a degraded view. Rate-limit
// exhaustion is checked before authorization: an exhausted quota often
// wears an auth-shaped status.
func FromError(err error) View {
	v := View{Text: diff.NoDiffAvailable, Degraded: true}

	switch {
	case githubapi.IsRateLimited(err):
		v.Diagnostic = MsgRateLimited
	case githubapi.IsAuthorization(err):
		v.Diagnostic = MsgAuthorization
	default:
		v.Diagnostic = diff.NoDiffAvailable + ": " + err.Error()
	}
	return v
}

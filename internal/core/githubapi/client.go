// Package githubapi is a minimal client for the revision-hosting API
// consumed by the diff engine: recursive tree listings, raw file content,
// precomputed range diffs, commit lists and the rate-limit probe.
//
// The bearer token is optional. Anonymous access is valid and simply
// runs under the lower rate limit.
package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/benchwatch/revdiff/internal/core/logging"
)

// DefaultBaseURL is the public hosting-API endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	acceptJSON = "application/vnd.github+json"
	acceptRaw  = "application/vnd.github.raw"
	acceptDiff = "application/vnd.github.diff"
	userAgent  = "revdiff"

	// probeTimeout bounds only the rate-limit probe. Diff fetches carry
	// no timeout; the page lifecycle tears them down.
	probeTimeout = 3 * time.Second
)

// Client talks to the hosting API. The zero value is not usable; use New.
type Client struct {
	base  string
	token string
	http  *http.Client
	probe *http.Client
	log   zerolog.Logger
}

// New creates a client for the API at baseURL. An empty token is valid.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  &http.Client{},
		probe: &http.Client{Timeout: probeTimeout},
		log:   logging.Component("githubapi"),
	}
}

// Tree returns the recursive file listing for a revision as a mapping
// from path to content hash. Non-blob entries are dropped.
func (c *Client) Tree(ctx context.Context, repo, rev string) (map[string]string, error) {
	u := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.base, repo, url.PathEscape(rev))

	body, err := c.get(ctx, c.http, u, acceptJSON)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Kind: KindTransport, URL: u, Remaining: -1, Err: fmt.Errorf("decode tree: %w", err)}
	}

	if payload.Truncated {
		c.log.Warn().Str("repo", repo).Str("rev", rev).Msg("tree listing truncated by the API")
	}

	tree := make(map[string]string, len(payload.Tree))
	for _, entry := range payload.Tree {
		if entry.Type != "blob" {
			continue
		}
		tree[entry.Path] = entry.SHA
	}
	return tree, nil
}

// Contents returns the raw content of path at rev. A missing path is not
// an error: the empty string stands in for an absent file, so a pair of
// trees can be diffed across additions and deletions.
func (c *Client) Contents(ctx context.Context, repo, path, rev string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", c.base, repo, escapePath(path), url.QueryEscape(rev))

	body, err := c.get(ctx, c.http, u, acceptRaw)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return string(body), nil
}

// Compare returns the API-rendered unified diff for "base...head". The
// three-dot form diffs head against the merge base, matching how the
// testing queue branches off master.
func (c *Client) Compare(ctx context.Context, repo, base, head string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/compare/%s...%s", c.base, repo, url.PathEscape(base), url.PathEscape(head))

	body, err := c.get(ctx, c.http, u, acceptDiff)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Commit is a single entry from the commit-list endpoint.
type Commit struct {
	SHA      string
	Comments int
}

// Commits lists commits reachable from ref, newest first.
func (c *Client) Commits(ctx context.Context, repo, ref string) ([]Commit, error) {
	u := fmt.Sprintf("%s/repos/%s/commits?sha=%s&per_page=100", c.base, repo, url.QueryEscape(ref))

	body, err := c.get(ctx, c.http, u, acceptJSON)
	if err != nil {
		return nil, err
	}

	var payload []struct {
		SHA    string `json:"sha"`
		Commit struct {
			CommentCount int `json:"comment_count"`
		} `json:"commit"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Kind: KindTransport, URL: u, Remaining: -1, Err: fmt.Errorf("decode commits: %w", err)}
	}

	commits := make([]Commit, 0, len(payload))
	for _, entry := range payload {
		commits = append(commits, Commit{SHA: entry.SHA, Comments: entry.Commit.CommentCount})
	}
	return commits, nil
}

// CommentCount sums review comments over the commit list for ref.
func (c *Client) CommentCount(ctx context.Context, repo, ref string) (int, error) {
	commits, err := c.Commits(ctx, repo, ref)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, commit := range commits {
		total += commit.Comments
	}
	return total, nil
}

// RateLimitStatus reports how many core API calls remain in the current
// window. It is read from the API, never persisted, and drives
// presentation warnings only.
type RateLimitStatus struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// RateLimit probes GET /rate_limit with the short-timeout client. A
// failed probe reports zero remaining calls rather than an error, so
// callers treat an unreachable probe as an exhausted quota.
func (c *Client) RateLimit(ctx context.Context) RateLimitStatus {
	u := c.base + "/rate_limit"

	body, err := c.get(ctx, c.probe, u, acceptJSON)
	if err != nil {
		c.log.Warn().Err(err).Msg("rate limit probe failed")
		return RateLimitStatus{}
	}

	var payload struct {
		Resources struct {
			Core RateLimitStatus `json:"core"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.log.Warn().Err(err).Msg("rate limit probe: malformed response")
		return RateLimitStatus{}
	}
	return payload.Resources.Core
}

// get issues a single GET and classifies any failure. The response body
// is fully read before returning.
func (c *Client) get(ctx context.Context, client *http.Client, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: u, Remaining: -1, Err: err}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: u, Remaining: -1, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Str("url", u).Msg("close response body")
		}
	}()

	remaining := remainingCalls(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, URL: u, Remaining: remaining, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, remaining, u)
	}
	return body, nil
}

// remainingCalls parses the remaining-calls rate-limit header, or -1
// when the header is absent or unreadable.
func remainingCalls(resp *http.Response) int {
	header := resp.Header.Get("X-RateLimit-Remaining")
	if header == "" {
		return -1
	}
	n, err := strconv.Atoi(header)
	if err != nil {
		return -1
	}
	return n
}

// escapePath escapes each path segment while keeping the separators, so
// nested paths stay nested in the request URL.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

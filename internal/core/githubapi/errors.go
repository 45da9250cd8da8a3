package githubapi

import (
	"errors"
	"fmt"
)

// Kind classifies a hosting-API failure for presentation.
type Kind int

const (
	// KindTransport covers network failures, malformed responses and any
	// status the other kinds do not claim.
	KindTransport Kind = iota
	// KindAuthorization is a 401 from the API.
	KindAuthorization
	// KindNotFound is a 404. Content lookups recover from it locally;
	// tree and range lookups propagate it.
	KindNotFound
	// KindRateLimited is derived, not header-native: a failing response
	// whose remaining-calls header has reached zero.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not found"
	case KindRateLimited:
		return "rate limited"
	default:
		return "transport"
	}
}

// Error is returned for any failed hosting-API call.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, 0 when the request never completed
	URL    string
	// Remaining is the rate-limit remaining-calls header on the failing
	// response, or -1 when the header was absent.
	Remaining int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hosting api: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("hosting api: %s: status %d (%s)", e.Kind, e.Status, e.URL)
}

func (e *Error) Unwrap() error { return e.Err }

// classifyStatus maps a non-200 response onto the error taxonomy. The
// rate-limit check runs first: an exhausted quota usually surfaces as a
// 403 but can dress up as other statuses.
func classifyStatus(status, remaining int, url string) *Error {
	kind := KindTransport
	switch {
	case remaining == 0:
		kind = KindRateLimited
	case status == 401:
		kind = KindAuthorization
	case status == 404:
		kind = KindNotFound
	}
	return &Error{Kind: kind, Status: status, URL: url, Remaining: remaining}
}

func isKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// IsNotFound reports whether err is a hosting-API 404.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsAuthorization reports whether err is a hosting-API 401.
func IsAuthorization(err error) bool { return isKind(err, KindAuthorization) }

// IsRateLimited reports whether err failed with the rate limit exhausted.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

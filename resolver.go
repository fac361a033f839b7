package saletrack

import "context"

// Resolution is a successful answer from the challenge resolution service:
// the page HTML as rendered after the anti-bot challenge was cleared, plus
// the session cookies that satisfied it.
type Resolution struct {
	Status  int      `json:"status"` // HTTP status the resolver observed on the target
	HTML    string   `json:"html"`
	Cookies []Cookie `json:"cookies"`
}

// ChallengeResolver resolves anti-bot challenge pages through an external
// service. A successful resolution is no guarantee of usable content: the
// returned HTML may still contain zero listing markers, and callers must
// verify content before treating the page as retrieved.
//
// Errors carry domain codes: EUNAVAILABLE when the service cannot be reached,
// ETIMEOUT when resolution exceeds its deadline, EREJECTED when the service
// answered but refused or failed the request.
type ChallengeResolver interface {
	// Resolve asks the service to fetch the URL through a real browser,
	// clearing any challenge in the way.
	Resolve(ctx context.Context, url string) (*Resolution, error)

	// Ping reports whether the resolution service is reachable.
	Ping(ctx context.Context) error
}

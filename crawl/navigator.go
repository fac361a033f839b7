// Package crawl provides marketplace crawl orchestration: per-page navigation
// with strategy escalation, per-target crawl control with cross-page
// deduplication, coverage validation, and snapshot diffing for sale detection.
package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/saletrack"
)

// Strategy identifies one navigation strategy in the escalation chain.
type Strategy string

// Navigation strategies, in escalation order.
const (
	StrategyDirect      Strategy = "direct"
	StrategyInteractive Strategy = "interactive_nav"
	StrategyRescue      Strategy = "challenge_rescue"
)

// Outcome is the result of one strategy attempt.
type Outcome string

// Attempt outcomes.
const (
	OutcomeSuccess    Outcome = "success"
	OutcomeNoListings Outcome = "no_listings"
	OutcomeChallenge  Outcome = "challenge"
	OutcomeError      Outcome = "error"
)

// Attempt records one strategy attempt on one page. Attempts are transient:
// they feed the escalation decision and the run's failure counters, and are
// logged for diagnosis, but never persisted.
type Attempt struct {
	Page       int
	Strategy   Strategy
	Outcome    Outcome
	ItemsFound int
}

// navState is the navigator's position in the escalation state machine.
type navState int

const (
	stateDirect navState = iota
	stateInteractive
	stateRescue
	stateSuccess
	stateFailed
)

// PageResult holds the outcome of navigating one results page.
type PageResult struct {
	Listings []saletrack.Listing
	Attempts []Attempt
}

// Navigator drives a render session through one listing-results page,
// escalating DIRECT -> INTERACTIVE_NAV -> CHALLENGE_RESCUE until a strategy
// yields at least one recognizable listing. A page either succeeds with
// extracted listings or fails definitively after the full chain.
type Navigator struct {
	Session  saletrack.RenderSession
	Resolver saletrack.ChallengeResolver
	Platform saletrack.Platform
	Logger   *slog.Logger
}

// FetchPage navigates to the given page of the target's search results and
// returns the extracted listings. The returned PageResult always carries the
// attempt trace, including on failure. A nil error means at least one listing
// was extracted.
func (n *Navigator) FetchPage(ctx context.Context, target string, page int) (*PageResult, error) {
	url := n.Platform.SearchURL(target, page)
	result := &PageResult{}

	state := stateDirect
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		switch state {
		case stateDirect:
			state = n.direct(ctx, url, page, target, result)
		case stateInteractive:
			state = n.interactive(ctx, page, target, result)
		case stateRescue:
			state = n.rescue(ctx, url, page, target, result)
		case stateSuccess:
			return result, nil
		case stateFailed:
			return result, saletrack.Errorf(saletrack.EUNAVAILABLE,
				"page %d of %q failed after all navigation strategies", page, target)
		}
	}
}

// direct requests the page URL through the render session and checks for
// listing elements.
func (n *Navigator) direct(ctx context.Context, url string, page int, target string, result *PageResult) navState {
	if err := n.Session.Navigate(ctx, url); err != nil {
		n.logf("direct navigation failed", page, "error", err)
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyDirect, Outcome: OutcomeError})
		return stateInteractive
	}

	listings, err := n.extract(ctx, page, target)
	if err != nil || len(listings) == 0 {
		n.logf("direct navigation yielded no listings", page)
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyDirect, Outcome: OutcomeNoListings})
		return stateInteractive
	}

	result.Listings = listings
	result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyDirect, Outcome: OutcomeSuccess, ItemsFound: len(listings)})
	return stateSuccess
}

// interactive simulates human-like pagination: dismiss any overlay that would
// intercept the click, click the next-page control, dismiss overlays that
// reappeared after navigation, and re-check for listings. A detectable
// challenge page escalates to rescue; so does silence, since a page that
// yields nothing to either navigation style is most likely blocked.
func (n *Navigator) interactive(ctx context.Context, page int, target string, result *PageResult) navState {
	n.dismissOverlays(ctx)

	clicked := false
	for _, sel := range n.Platform.NextPageSelectors() {
		ok, err := n.Session.Click(ctx, sel)
		if err != nil {
			n.logf("interactive click failed", page, "selector", sel, "error", err)
			continue
		}
		if ok {
			clicked = true
			break
		}
	}

	if clicked {
		// Overlays can reappear after any navigation.
		n.dismissOverlays(ctx)
	}

	if n.challengeDetected(ctx) {
		n.logf("challenge page detected after interactive navigation", page)
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyInteractive, Outcome: OutcomeChallenge})
		return stateRescue
	}

	listings, err := n.extract(ctx, page, target)
	if err != nil || len(listings) == 0 {
		n.logf("interactive navigation yielded no listings", page, "clicked", clicked)
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyInteractive, Outcome: OutcomeNoListings})
		return stateRescue
	}

	result.Listings = listings
	result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyInteractive, Outcome: OutcomeSuccess, ItemsFound: len(listings)})
	return stateSuccess
}

// rescue invokes the challenge resolver. On success it first replays the
// resolved cookies through a normal re-render; if that still yields no
// listings it falls back to replacing the document content with the resolved
// HTML and re-querying.
func (n *Navigator) rescue(ctx context.Context, url string, page int, target string, result *PageResult) navState {
	res, err := n.Resolver.Resolve(ctx, url)
	if err != nil {
		n.logf("challenge rescue failed", page,
			"code", saletrack.ErrorCode(err), "error", saletrack.ErrorMessage(err))
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyRescue, Outcome: OutcomeError})
		return stateFailed
	}

	// Re-render through the normal navigation path with the resolved cookies.
	if len(res.Cookies) > 0 {
		if err := n.Session.SetCookies(ctx, res.Cookies); err != nil {
			n.logf("cookie injection failed", page, "error", err)
		}
	}
	if err := n.Session.Navigate(ctx, url); err == nil {
		n.dismissOverlays(ctx)
		if listings, err := n.extract(ctx, page, target); err == nil && len(listings) > 0 {
			result.Listings = listings
			result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyRescue, Outcome: OutcomeSuccess, ItemsFound: len(listings)})
			return stateSuccess
		}
	}

	// Fall back to injecting the resolved HTML directly. No scripts run, but
	// the listing markup the resolver saw is queryable.
	n.logf("re-render after rescue yielded no listings, injecting resolved content", page)
	if err := n.Session.SetContent(ctx, res.HTML); err != nil {
		n.logf("content injection failed", page, "error", err)
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyRescue, Outcome: OutcomeError})
		return stateFailed
	}
	n.dismissOverlays(ctx)

	listings, err := n.extract(ctx, page, target)
	if err != nil || len(listings) == 0 {
		result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyRescue, Outcome: OutcomeNoListings})
		return stateFailed
	}

	result.Listings = listings
	result.Attempts = append(result.Attempts, Attempt{Page: page, Strategy: StrategyRescue, Outcome: OutcomeSuccess, ItemsFound: len(listings)})
	return stateSuccess
}

// extract reads the session's current document and parses listings with the
// platform's selectors, annotating each with the page it was seen on.
func (n *Navigator) extract(ctx context.Context, page int, target string) ([]saletrack.Listing, error) {
	html, err := n.Session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := n.Platform.ExtractListings(html, target)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].SeenAtPage = page
	}
	return listings, nil
}

// dismissOverlays clicks every visible overlay-dismiss control the platform
// knows about. Individual click failures are ignored; an overlay that won't
// close surfaces later as a failed navigation, not here.
func (n *Navigator) dismissOverlays(ctx context.Context) {
	for _, sel := range n.Platform.OverlaySelectors() {
		ok, err := n.Session.Click(ctx, sel)
		if err != nil {
			continue
		}
		if ok && n.Logger != nil {
			n.Logger.Debug("dismissed overlay", "selector", sel)
		}
	}
}

// challengeDetected reports whether the current document shows one of the
// platform's anti-bot challenge markers.
func (n *Navigator) challengeDetected(ctx context.Context) bool {
	for _, marker := range n.Platform.ChallengeMarkers() {
		count, err := n.Session.Count(ctx, marker)
		if err == nil && count > 0 {
			return true
		}
	}
	return false
}

func (n *Navigator) logf(msg string, page int, args ...any) {
	if n.Logger == nil {
		return
	}
	n.Logger.Warn(msg, append([]any{"platform", n.Platform.Name(), "page", page}, args...)...)
}

package crawl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/crawl"
	"github.com/fwojciec/saletrack/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	blockedHTML = `<html><body><div id="challenge">checking your browser</div></body></html>`
	resultsHTML = `<html><body><article class="item" data-id="a1"></article></body></html>`
)

// listingPlatform returns a mock platform that extracts one listing per
// occurrence of "article" in the HTML.
func listingPlatform() *mock.Platform {
	return &mock.Platform{
		NameValue:        "testmarket",
		SearchURLFn:      func(target string, page int) string { return "https://example.test/search?page=" + target },
		ListingSelectorV: "article.item",
		ExtractListingsFn: func(html, target string) ([]saletrack.Listing, error) {
			n := strings.Count(html, "<article")
			listings := make([]saletrack.Listing, 0, n)
			for i := 0; i < n; i++ {
				listings = append(listings, saletrack.Listing{
					Platform:  "testmarket",
					ListingID: "L" + string(rune('1'+i)),
				})
			}
			return listings, nil
		},
	}
}

func TestNavigator_DirectSuccess(t *testing.T) {
	t.Parallel()

	session := &mock.RenderSession{
		NavigateFn: func(ctx context.Context, url string) error { return nil },
		HTMLFn:     func(ctx context.Context) (string, error) { return resultsHTML, nil },
	}

	nav := &crawl.Navigator{
		Session:  session,
		Resolver: &mock.ChallengeResolver{},
		Platform: listingPlatform(),
	}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 1)

	require.NoError(t, err)
	assert.Len(t, result.Listings, 1)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, crawl.StrategyDirect, result.Attempts[0].Strategy)
	assert.Equal(t, crawl.OutcomeSuccess, result.Attempts[0].Outcome)
	assert.Equal(t, 1, result.Listings[0].SeenAtPage)
}

func TestNavigator_EscalatesToRescueContentReplacement(t *testing.T) {
	t.Parallel()

	// Direct and interactive navigation both land on a blocked page; the
	// resolver succeeds, the re-render is still blocked, and the resolved
	// HTML injected via SetContent carries the listings.
	resolvedHTML := strings.Repeat(`<article class="item"></article>`, 10)

	current := ""
	var cookiesSet []saletrack.Cookie
	session := &mock.RenderSession{
		NavigateFn: func(ctx context.Context, url string) error {
			current = blockedHTML
			return nil
		},
		ClickFn: func(ctx context.Context, selector string) (bool, error) { return false, nil },
		SetContentFn: func(ctx context.Context, html string) error {
			current = html
			return nil
		},
		HTMLFn:  func(ctx context.Context) (string, error) { return current, nil },
		CountFn: func(ctx context.Context, selector string) (int, error) { return 0, nil },
		SetCookiesFn: func(ctx context.Context, cookies []saletrack.Cookie) error {
			cookiesSet = cookies
			return nil
		},
	}

	resolver := &mock.ChallengeResolver{
		ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
			return &saletrack.Resolution{
				Status:  200,
				HTML:    resolvedHTML,
				Cookies: []saletrack.Cookie{{Name: "cf_clearance", Value: "ok"}},
			}, nil
		},
	}

	platform := listingPlatform()
	platform.NextPageSelectorsV = []string{"a.next"}
	platform.ExtractListingsFn = func(html, target string) ([]saletrack.Listing, error) {
		n := strings.Count(html, "<article")
		listings := make([]saletrack.Listing, n)
		for i := range listings {
			listings[i] = saletrack.Listing{Platform: "testmarket", ListingID: "L" + string(rune('a'+i))}
		}
		return listings, nil
	}

	nav := &crawl.Navigator{Session: session, Resolver: resolver, Platform: platform}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 2)

	require.NoError(t, err)
	assert.Len(t, result.Listings, 10)

	// The state sequence is DIRECT -> INTERACTIVE_NAV -> CHALLENGE_RESCUE -> SUCCESS.
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, crawl.StrategyDirect, result.Attempts[0].Strategy)
	assert.Equal(t, crawl.OutcomeNoListings, result.Attempts[0].Outcome)
	assert.Equal(t, crawl.StrategyInteractive, result.Attempts[1].Strategy)
	assert.Equal(t, crawl.OutcomeNoListings, result.Attempts[1].Outcome)
	assert.Equal(t, crawl.StrategyRescue, result.Attempts[2].Strategy)
	assert.Equal(t, crawl.OutcomeSuccess, result.Attempts[2].Outcome)
	assert.Equal(t, 10, result.Attempts[2].ItemsFound)

	assert.Equal(t, []saletrack.Cookie{{Name: "cf_clearance", Value: "ok"}}, cookiesSet)
}

func TestNavigator_ChallengeDetectedEscalatesToRescue(t *testing.T) {
	t.Parallel()

	current := blockedHTML
	session := &mock.RenderSession{
		NavigateFn: func(ctx context.Context, url string) error { return nil },
		ClickFn: func(ctx context.Context, selector string) (bool, error) {
			return selector == "a.next", nil
		},
		SetContentFn: func(ctx context.Context, html string) error {
			current = html
			return nil
		},
		HTMLFn: func(ctx context.Context) (string, error) { return current, nil },
		CountFn: func(ctx context.Context, selector string) (int, error) {
			if selector == "#challenge" {
				return 1, nil
			}
			return 0, nil
		},
		SetCookiesFn: func(ctx context.Context, cookies []saletrack.Cookie) error { return nil },
	}

	platform := listingPlatform()
	platform.NextPageSelectorsV = []string{"a.next"}
	platform.ChallengeMarkersV = []string{"#challenge"}

	resolver := &mock.ChallengeResolver{
		ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
			return &saletrack.Resolution{Status: 200, HTML: resultsHTML}, nil
		},
	}

	nav := &crawl.Navigator{Session: session, Resolver: resolver, Platform: platform}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 3)

	require.NoError(t, err)
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, crawl.OutcomeChallenge, result.Attempts[1].Outcome)
	assert.Equal(t, crawl.StrategyRescue, result.Attempts[2].Strategy)
}

func TestNavigator_AllStrategiesFail(t *testing.T) {
	t.Parallel()

	session := &mock.RenderSession{
		NavigateFn:   func(ctx context.Context, url string) error { return nil },
		ClickFn:      func(ctx context.Context, selector string) (bool, error) { return false, nil },
		SetContentFn: func(ctx context.Context, html string) error { return nil },
		HTMLFn:       func(ctx context.Context) (string, error) { return blockedHTML, nil },
		CountFn:      func(ctx context.Context, selector string) (int, error) { return 0, nil },
		SetCookiesFn: func(ctx context.Context, cookies []saletrack.Cookie) error { return nil },
	}

	resolver := &mock.ChallengeResolver{
		ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
			return nil, saletrack.Errorf(saletrack.EUNAVAILABLE, "resolver is down")
		},
	}

	nav := &crawl.Navigator{Session: session, Resolver: resolver, Platform: listingPlatform()}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 2)

	require.Error(t, err)
	assert.Equal(t, saletrack.EUNAVAILABLE, saletrack.ErrorCode(err))
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, crawl.OutcomeError, result.Attempts[2].Outcome)
}

func TestNavigator_ResolverSuccessWithEmptyContentIsSoftFailure(t *testing.T) {
	t.Parallel()

	// A resolution that contains zero listing markers must not count as a
	// successful page: the navigator verifies content before declaring success.
	session := &mock.RenderSession{
		NavigateFn:   func(ctx context.Context, url string) error { return nil },
		ClickFn:      func(ctx context.Context, selector string) (bool, error) { return false, nil },
		SetContentFn: func(ctx context.Context, html string) error { return nil },
		HTMLFn:       func(ctx context.Context) (string, error) { return blockedHTML, nil },
		CountFn:      func(ctx context.Context, selector string) (int, error) { return 0, nil },
		SetCookiesFn: func(ctx context.Context, cookies []saletrack.Cookie) error { return nil },
	}

	resolver := &mock.ChallengeResolver{
		ResolveFn: func(ctx context.Context, url string) (*saletrack.Resolution, error) {
			return &saletrack.Resolution{Status: 200, HTML: "<html><body>empty</body></html>"}, nil
		},
	}

	nav := &crawl.Navigator{Session: session, Resolver: resolver, Platform: listingPlatform()}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 2)

	require.Error(t, err)
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, crawl.OutcomeNoListings, result.Attempts[2].Outcome)
}

func TestNavigator_DismissesOverlaysBeforeClicking(t *testing.T) {
	t.Parallel()

	var clicks []string
	current := blockedHTML
	session := &mock.RenderSession{
		NavigateFn: func(ctx context.Context, url string) error { return nil },
		ClickFn: func(ctx context.Context, selector string) (bool, error) {
			clicks = append(clicks, selector)
			if selector == "a.next" {
				current = resultsHTML
				return true, nil
			}
			return selector == "#consent-accept", nil
		},
		HTMLFn:  func(ctx context.Context) (string, error) { return current, nil },
		CountFn: func(ctx context.Context, selector string) (int, error) { return 0, nil },
	}

	platform := listingPlatform()
	platform.OverlaySelectorsV = []string{"#consent-accept"}
	platform.NextPageSelectorsV = []string{"a.next"}

	nav := &crawl.Navigator{Session: session, Resolver: &mock.ChallengeResolver{}, Platform: platform}

	result, err := nav.FetchPage(context.Background(), "omega seamaster", 2)

	require.NoError(t, err)
	assert.Len(t, result.Listings, 1)

	// Overlay pass runs before the pagination click and again after it.
	require.GreaterOrEqual(t, len(clicks), 3)
	assert.Equal(t, "#consent-accept", clicks[0])
	assert.Equal(t, "a.next", clicks[1])
	assert.Equal(t, "#consent-accept", clicks[2])
}

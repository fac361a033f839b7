package saletrack

// Totals is the page and item count a marketplace advertises for a search,
// parsed from the first results page. Zero values mean the marketplace did
// not advertise a total.
type Totals struct {
	Items int `json:"items"`
	Pages int `json:"pages"`
}

// Platform encapsulates everything marketplace-specific about crawling one
// site: how page numbers map to URLs, which DOM elements are listings, which
// controls paginate, and what an anti-bot challenge page looks like. The
// navigation state machine itself is platform-agnostic and consumes these as
// policy data.
type Platform interface {
	// Name returns the platform identifier (e.g. "chrono24").
	Name() string

	// SearchURL builds the results URL for the target at the given page
	// number, following the platform's actual pagination address pattern.
	// Page-size-maximizing options are embedded here so they apply from the
	// first page without per-page re-application.
	SearchURL(target string, page int) string

	// ListingSelector is the primary CSS selector matching one listing
	// element on a results page.
	ListingSelector() string

	// NextPageSelectors are candidate selectors for the "next page" control,
	// tried in order during interactive navigation.
	NextPageSelectors() []string

	// OverlaySelectors are candidate selectors for dismiss buttons on
	// modal/consent/"continue" overlays that intercept clicks.
	OverlaySelectors() []string

	// ChallengeMarkers are selectors whose presence identifies an anti-bot
	// challenge page.
	ChallengeMarkers() []string

	// ExtractListings parses listings out of a rendered results page, trying
	// the primary listing selector first and a broader fallback set when it
	// matches nothing. Returns an empty slice, not an error, when the page
	// parses but contains no listings.
	ExtractListings(html, target string) ([]Listing, error)

	// ParseTotals reads the advertised result totals from the first page.
	ParseTotals(html string) Totals
}

// PlatformRegistry resolves platforms by name.
type PlatformRegistry interface {
	// Get returns the platform registered under the name.
	// Returns ENOTFOUND if no such platform is registered.
	Get(name string) (Platform, error)

	// Register adds a platform, replacing any previous registration.
	Register(p Platform)

	// Names returns the registered platform names.
	Names() []string
}

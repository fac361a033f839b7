package mock

import "github.com/fwojciec/saletrack"

var _ saletrack.Platform = (*Platform)(nil)

// Platform is a mock implementation of saletrack.Platform. String-slice
// fields default to empty; NameValue defaults to "mock".
type Platform struct {
	NameValue          string
	SearchURLFn        func(target string, page int) string
	ListingSelectorV   string
	NextPageSelectorsV []string
	OverlaySelectorsV  []string
	ChallengeMarkersV  []string
	ExtractListingsFn  func(html, target string) ([]saletrack.Listing, error)
	ParseTotalsFn      func(html string) saletrack.Totals
}

func (p *Platform) Name() string {
	if p.NameValue == "" {
		return "mock"
	}
	return p.NameValue
}

func (p *Platform) SearchURL(target string, page int) string {
	if p.SearchURLFn == nil {
		return "https://example.test/search"
	}
	return p.SearchURLFn(target, page)
}

func (p *Platform) ListingSelector() string {
	return p.ListingSelectorV
}

func (p *Platform) NextPageSelectors() []string {
	return p.NextPageSelectorsV
}

func (p *Platform) OverlaySelectors() []string {
	return p.OverlaySelectorsV
}

func (p *Platform) ChallengeMarkers() []string {
	return p.ChallengeMarkersV
}

func (p *Platform) ExtractListings(html, target string) ([]saletrack.Listing, error) {
	return p.ExtractListingsFn(html, target)
}

func (p *Platform) ParseTotals(html string) saletrack.Totals {
	if p.ParseTotalsFn == nil {
		return saletrack.Totals{}
	}
	return p.ParseTotalsFn(html)
}

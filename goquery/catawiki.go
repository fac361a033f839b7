package goquery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/saletrack"
)

// catawikiPageSize is the number of lots per results page.
const catawikiPageSize = 60

var _ saletrack.Platform = (*Catawiki)(nil)

// Catawiki extracts auction lots from catawiki wristwatch category searches.
type Catawiki struct {
	baseURL string
}

// NewCatawiki creates a Catawiki adapter.
func NewCatawiki() *Catawiki {
	return &Catawiki{baseURL: "https://www.catawiki.com"}
}

// Name returns the platform identifier.
func (p *Catawiki) Name() string {
	return "catawiki"
}

// SearchURL builds the wristwatch category search URL for a target and page.
func (p *Catawiki) SearchURL(target string, page int) string {
	u := fmt.Sprintf("%s/es/l/401-relojes-de-pulsera?q=%s", p.baseURL, url.QueryEscape(target))
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}

// ListingSelector returns the primary lot card selector.
func (p *Catawiki) ListingSelector() string {
	return "[data-testid='lot-card']"
}

// NextPageSelectors returns pagination link selectors in preference order.
func (p *Catawiki) NextPageSelectors() []string {
	return []string{
		"a[aria-label='Next']",
		"[data-testid='pagination'] a[rel='next']",
		".pagination a.next",
		".pagination [rel='next']",
	}
}

// OverlaySelectors returns selectors for the consent banners and login
// prompts catawiki layers over result pages.
func (p *Catawiki) OverlaySelectors() []string {
	return []string{
		"button[data-testid='accept-cookies']",
		"[data-testid='modal-close']",
		".cookie-banner button",
		"[aria-label='Cerrar']",
		"[aria-label='Close']",
		".modal-close",
		".close-button",
	}
}

// ChallengeMarkers returns selectors whose presence indicates an anti-bot
// challenge page instead of results.
func (p *Catawiki) ChallengeMarkers() []string {
	return []string{
		"#challenge-running",
		".cf-browser-verification",
		"#cf-challenge-running",
		"#challenge-stage",
		"div.cf-turnstile",
	}
}

var catawikiLotID = regexp.MustCompile(`/l/(\d+)`)

var catawikiFallbackSelectors = []string{
	".lot-card",
	"article[class*='lot']",
	"a[href*='/l/']",
}

// ExtractListings parses lots out of a rendered results page, cascading
// through markup variants until one matches.
func (p *Catawiki) ExtractListings(html, target string) ([]saletrack.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EINVALID, "failed to parse HTML: %v", err)
	}

	items := doc.Find(p.ListingSelector())
	for _, fallback := range catawikiFallbackSelectors {
		if items.Length() > 0 {
			break
		}
		items = doc.Find(fallback)
	}

	var listings []saletrack.Listing
	seen := make(map[string]bool)
	items.Each(func(_ int, item *goquery.Selection) {
		listing, ok := p.parseItem(item)
		if !ok || seen[listing.ListingID] {
			return
		}
		seen[listing.ListingID] = true
		listings = append(listings, listing)
	})

	return listings, nil
}

func (p *Catawiki) parseItem(item *goquery.Selection) (saletrack.Listing, bool) {
	link := item.Find("a[href*='/l/']").First()
	if link.Length() == 0 {
		link = item.Find("a").First()
	}

	href, _ := link.Attr("href")
	if href == "" && goquery.NodeName(item) == "a" {
		href, _ = item.Attr("href")
	}
	if href != "" && !strings.HasPrefix(href, "http") {
		href = p.baseURL + href
	}

	m := catawikiLotID.FindStringSubmatch(href)
	if m == nil {
		return saletrack.Listing{}, false
	}

	var title string
	for _, sel := range []string{"[data-testid='lot-title']", ".lot-title", "h3", "h4", "[class*='title']"} {
		title = strings.TrimSpace(item.Find(sel).First().Text())
		if title != "" {
			break
		}
	}

	var price float64
	for _, sel := range []string{"[data-testid='current-bid']", "[data-testid='lot-price']", ".current-bid", "[class*='price']", "[class*='bid']"} {
		if v, ok := parsePrice(item.Find(sel).First().Text()); ok && v > 0 {
			price = v
			break
		}
	}

	return saletrack.Listing{
		Platform:  p.Name(),
		ListingID: m[1],
		Title:     title,
		Price:     price,
		Currency:  "EUR",
		ImageURL:  firstImageURL(item),
		URL:       href,
	}, true
}

// ParseTotals reads the advertised lot count and page count from a results
// page.
func (p *Catawiki) ParseTotals(html string) saletrack.Totals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return saletrack.Totals{}
	}

	totals := saletrack.Totals{
		Pages: maxPaginationPage(doc),
		Items: resultCount(doc),
	}

	if totals.Items == 0 && totals.Pages > 0 {
		totals.Items = totals.Pages * catawikiPageSize
	}
	if totals.Pages == 0 && totals.Items > 0 {
		totals.Pages = (totals.Items + catawikiPageSize - 1) / catawikiPageSize
	}
	return totals
}

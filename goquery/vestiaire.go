package goquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/saletrack"
)

// vestiairePageSize is the number of items per seller listings page.
const vestiairePageSize = 60

var _ saletrack.Platform = (*Vestiaire)(nil)

// Vestiaire extracts items offered for sale by a single seller. The target
// is the seller's profile ID rather than a search query.
type Vestiaire struct {
	baseURL string
}

// NewVestiaire creates a Vestiaire adapter.
func NewVestiaire() *Vestiaire {
	return &Vestiaire{baseURL: "https://es.vestiairecollective.com"}
}

// Name returns the platform identifier.
func (p *Vestiaire) Name() string {
	return "vestiaire"
}

// SearchURL builds the seller's items-for-sale URL for a page.
func (p *Vestiaire) SearchURL(target string, page int) string {
	u := fmt.Sprintf("%s/profile/%s/?tab=items-for-sale", p.baseURL, target)
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}

// ListingSelector returns the primary product card selector.
func (p *Vestiaire) ListingSelector() string {
	return "[class*='product-card_productCard']"
}

// NextPageSelectors returns pagination link selectors in preference order.
func (p *Vestiaire) NextPageSelectors() []string {
	return []string{
		"a[aria-label='Next']",
		"[class*='pagination'] a[rel='next']",
		".pagination a.next",
	}
}

// OverlaySelectors returns selectors for consent banners and app prompts.
func (p *Vestiaire) OverlaySelectors() []string {
	return []string{
		"#onetrust-accept-btn-handler",
		"button[data-testid='accept-cookies']",
		".cookie-banner button",
		"[aria-label='Close']",
		".modal-close",
	}
}

// ChallengeMarkers returns selectors whose presence indicates an anti-bot
// challenge page instead of results.
func (p *Vestiaire) ChallengeMarkers() []string {
	return []string{
		"#challenge-running",
		".cf-browser-verification",
		"#cf-challenge-running",
		"#challenge-stage",
		"div.cf-turnstile",
	}
}

var vestiaireProductID = regexp.MustCompile(`/product/[^/]+-(\d+)\.shtml`)

var vestiaireNumericID = regexp.MustCompile(`/product/(\d+)`)

var vestiaireFallbackSelectors = []string{
	"[class*='productCard']",
	"[data-testid='product-card']",
	"a[href*='/product/']",
}

// ExtractListings parses product cards out of a rendered seller page,
// cascading through markup variants until one matches.
func (p *Vestiaire) ExtractListings(html, target string) ([]saletrack.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EINVALID, "failed to parse HTML: %v", err)
	}

	items := doc.Find(p.ListingSelector())
	for _, fallback := range vestiaireFallbackSelectors {
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

func (p *Vestiaire) parseItem(item *goquery.Selection) (saletrack.Listing, bool) {
	link := item.Find("a[href*='/product/']").First()
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

	m := vestiaireProductID.FindStringSubmatch(href)
	if m == nil {
		m = vestiaireNumericID.FindStringSubmatch(href)
	}
	if m == nil {
		return saletrack.Listing{}, false
	}

	var name string
	for _, sel := range []string{"[data-testid='product-name']", ".product-name", "[class*='productCard__name']", "h3", "span.name"} {
		name = strings.TrimSpace(item.Find(sel).First().Text())
		if name != "" {
			break
		}
	}

	var brand string
	for _, sel := range []string{"[data-testid='product-brand']", ".product-brand", "[class*='productCard__brand']", "span.brand"} {
		brand = strings.TrimSpace(item.Find(sel).First().Text())
		if brand != "" {
			break
		}
	}

	title := name
	if brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		title = strings.TrimSpace(brand + " " + name)
	}

	var price float64
	for _, sel := range []string{"[data-testid='product-price']", ".product-price", "[class*='productCard__price']", "span.price"} {
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

// ParseTotals reads the pagination controls from a seller page. Vestiaire
// does not advertise a total item count, so items are estimated from the
// page count.
func (p *Vestiaire) ParseTotals(html string) saletrack.Totals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return saletrack.Totals{}
	}

	totals := saletrack.Totals{
		Pages: maxPaginationPage(doc),
		Items: resultCount(doc),
	}

	if totals.Items == 0 && totals.Pages > 0 {
		totals.Items = totals.Pages * vestiairePageSize
	}
	if totals.Pages == 0 && totals.Items > 0 {
		totals.Pages = (totals.Items + vestiairePageSize - 1) / vestiairePageSize
	}
	return totals
}

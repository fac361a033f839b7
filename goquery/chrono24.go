package goquery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/saletrack"
)

// chrono24PageSize is the maximum page size the site supports.
const chrono24PageSize = 120

var _ saletrack.Platform = (*Chrono24)(nil)

// Chrono24 extracts watch listings from chrono24 search result pages.
// The site changes its result markup frequently, so extraction cascades
// through a list of selectors from most to least specific.
type Chrono24 struct {
	baseURL          string
	excludeCountries map[string]bool
}

// NewChrono24 creates a Chrono24 adapter. Listings from the given seller
// countries are dropped during extraction; pass none to keep everything.
func NewChrono24(excludeCountries ...string) *Chrono24 {
	excluded := make(map[string]bool, len(excludeCountries))
	for _, c := range excludeCountries {
		excluded[strings.ToLower(c)] = true
	}
	return &Chrono24{
		baseURL:          "https://www.chrono24.es",
		excludeCountries: excluded,
	}
}

// Name returns the platform identifier.
func (p *Chrono24) Name() string {
	return "chrono24"
}

var chrono24ModPage = regexp.MustCompile(`(--mod\d+)(?:-\d+)?(\.htm)`)

var chrono24ShowPage = regexp.MustCompile(`showpage=\d+`)

// SearchURL builds the results URL for a target and page. A target that is
// already a URL (a category or model page) is paginated in place: model pages
// use the --modXX-N.htm suffix, search pages the showpage parameter. A plain
// target is wrapped in a search query sorted by newest first.
func (p *Chrono24) SearchURL(target string, page int) string {
	if strings.HasPrefix(target, "http") {
		return p.paginate(target, page)
	}

	params := url.Values{}
	params.Set("query", target)
	params.Set("dosearch", "true")
	params.Set("searchexplain", "1")
	params.Set("sortorder", "5")
	params.Set("pageSize", fmt.Sprintf("%d", chrono24PageSize))
	if page > 1 {
		params.Set("showpage", fmt.Sprintf("%d", page))
	}
	return p.baseURL + "/search/index.htm?" + params.Encode()
}

func (p *Chrono24) paginate(pageURL string, page int) string {
	if chrono24ModPage.MatchString(pageURL) {
		return chrono24ModPage.ReplaceAllString(pageURL, fmt.Sprintf("${1}-%d${2}", page))
	}
	if page <= 1 {
		return pageURL
	}
	if chrono24ShowPage.MatchString(pageURL) {
		return chrono24ShowPage.ReplaceAllString(pageURL, fmt.Sprintf("showpage=%d", page))
	}
	sep := "?"
	if strings.Contains(pageURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sshowpage=%d", pageURL, sep, page)
}

// ListingSelector returns the primary result item selector.
func (p *Chrono24) ListingSelector() string {
	return "article.article-item-container"
}

// NextPageSelectors returns pagination link selectors in preference order.
func (p *Chrono24) NextPageSelectors() []string {
	return []string{
		"a[aria-label='Siguiente']",
		"a[aria-label='Next']",
		".pagination a.next",
		".pagination [rel='next']",
		"a[title='Next page']",
		".pager-next a",
		"a.js-page-link[data-page]",
	}
}

// OverlaySelectors returns selectors for consent and promo overlays that
// block interaction with result pages.
func (p *Chrono24) OverlaySelectors() []string {
	return []string{
		"#onetrust-accept-btn-handler",
		"button[data-testid='accept-cookies']",
		".cookie-banner button",
		"[aria-label='Cerrar']",
		"[aria-label='Close']",
		".modal-close",
	}
}

// ChallengeMarkers returns selectors whose presence indicates an anti-bot
// challenge page instead of results.
func (p *Chrono24) ChallengeMarkers() []string {
	return []string{
		"#challenge-running",
		".cf-browser-verification",
		"#cf-challenge-running",
		"#challenge-stage",
		"div.cf-turnstile",
	}
}

var chrono24ListingID = regexp.MustCompile(`--id(\d+)\.htm`)

var chrono24FallbackSelectors = []string{
	"div.article-item-container",
	"[data-testid='article-item']",
	".rcard",
	"[class*='watch-card']",
	".article-card",
	"article[class*='article']",
	"div[class*='article-item']",
	"[data-article-id]",
	".js-article-item",
}

// ExtractListings parses listings out of a rendered results page. It tries
// the primary selector first and falls back through alternative markup
// variants until one matches.
func (p *Chrono24) ExtractListings(html, target string) ([]saletrack.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EINVALID, "failed to parse HTML: %v", err)
	}

	items := doc.Find(p.ListingSelector())
	for _, fallback := range chrono24FallbackSelectors {
		if items.Length() > 0 {
			break
		}
		items = doc.Find(fallback)
	}

	var listings []saletrack.Listing
	items.Each(func(_ int, item *goquery.Selection) {
		listing, ok := p.parseItem(item)
		if !ok {
			return
		}
		if p.excludeCountries[strings.ToLower(listing.Country)] {
			return
		}
		listings = append(listings, listing)
	})

	return listings, nil
}

var chrono24Brands = []string{
	"Omega", "Rolex", "Patek", "Audemars", "Cartier", "IWC",
	"Breitling", "Tudor", "TAG", "Hermès", "Hermes", "Longines",
	"Zenith", "Jaeger", "Vacheron", "Panerai", "Hublot", "Chopard",
	"Blancpain", "Girard", "Seiko", "A. Lange",
}

var chrono24Conditions = []struct {
	keyword    string
	normalized string
}{
	{"nuevo", "Nuevo"},
	{"new", "Nuevo"},
	{"sin usar", "Nuevo"},
	{"unworn", "Nuevo"},
	{"muy bueno", "Muy Bueno"},
	{"very good", "Muy Bueno"},
	{"bueno", "Bueno"},
	{"good", "Bueno"},
	{"aceptable", "Aceptable"},
	{"fair", "Aceptable"},
}

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

func (p *Chrono24) parseItem(item *goquery.Selection) (saletrack.Listing, bool) {
	link := item.Find("a[href*='--id']").First()
	if link.Length() == 0 {
		link = item.Find("a").First()
	}

	href, _ := link.Attr("href")
	if href != "" && !strings.HasPrefix(href, "http") {
		href = p.baseURL + href
	}

	m := chrono24ListingID.FindStringSubmatch(href)
	if m == nil {
		return saletrack.Listing{}, false
	}
	id := m[1]

	// The card text carries title, price, condition and seller country as
	// separate lines.
	var title, priceText, country string
	for _, line := range textLines(item) {
		if title == "" {
			for _, brand := range chrono24Brands {
				if strings.Contains(line, brand) {
					title = line
					break
				}
			}
		}
		if priceText == "" && strings.Contains(line, "€") {
			priceText = line
		}
		if country == "" && countryCode.MatchString(line) {
			country = line
		}
	}

	price, _ := parsePrice(priceText)

	var condition string
	lower := strings.ToLower(item.Text())
	for _, c := range chrono24Conditions {
		if strings.Contains(lower, c.keyword) {
			condition = c.normalized
			break
		}
	}

	image := firstImageURL(item)
	if image == "" {
		// The CDN path is derivable from the listing ID.
		image = fmt.Sprintf("https://cdn2.chrono24.com/images/uhren/%s-1_v1.jpg", id)
	}

	return saletrack.Listing{
		Platform:  p.Name(),
		ListingID: id,
		Title:     title,
		Price:     price,
		Currency:  "EUR",
		Condition: condition,
		Country:   country,
		ImageURL:  image,
		URL:       href,
	}, true
}

// ParseTotals reads the advertised result count and page count from a results
// page. Either value may be derived from the other using the page size when
// only one is present.
func (p *Chrono24) ParseTotals(html string) saletrack.Totals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return saletrack.Totals{}
	}

	totals := saletrack.Totals{
		Pages: maxPaginationPage(doc),
		Items: resultCount(doc),
	}

	if totals.Items == 0 && totals.Pages > 0 {
		totals.Items = totals.Pages * chrono24PageSize
	}
	if totals.Pages == 0 && totals.Items > 0 {
		totals.Pages = (totals.Items + chrono24PageSize - 1) / chrono24PageSize
	}
	return totals
}

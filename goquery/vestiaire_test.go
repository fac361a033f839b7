package goquery_test

import (
	"testing"

	"github.com/fwojciec/saletrack/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVestiaire_SearchURL(t *testing.T) {
	t.Parallel()

	p := goquery.NewVestiaire()

	assert.Equal(t,
		"https://es.vestiairecollective.com/profile/9876543/?tab=items-for-sale",
		p.SearchURL("9876543", 1))
	assert.Equal(t,
		"https://es.vestiairecollective.com/profile/9876543/?tab=items-for-sale&page=2",
		p.SearchURL("9876543", 2))
}

const vestiaireResultsHTML = `<html><body>
<div class="product-card_productCard__x1y2z">
	<a href="/product/omega-speedmaster-watch-44556677.shtml">
		<img data-src="https://images.vestiairecollective.com/produit/44556677-1.jpg">
	</a>
	<span data-testid="product-brand">Omega</span>
	<span data-testid="product-name">Speedmaster watch</span>
	<span data-testid="product-price">1.980 €</span>
</div>
<div class="product-card_productCard__x1y2z">
	<a href="/product/cartier-tank-watch-99887711.shtml"></a>
	<span data-testid="product-name">Cartier Tank watch</span>
	<span data-testid="product-price">4.250 €</span>
</div>
</body></html>`

func TestVestiaire_ExtractListings(t *testing.T) {
	t.Parallel()

	p := goquery.NewVestiaire()

	listings, err := p.ExtractListings(vestiaireResultsHTML, "9876543")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "vestiaire", first.Platform)
	assert.Equal(t, "44556677", first.ListingID)
	assert.Equal(t, "Omega Speedmaster watch", first.Title)
	assert.Equal(t, 1980.0, first.Price)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "https://images.vestiairecollective.com/produit/44556677-1.jpg", first.ImageURL)
	assert.Equal(t, "https://es.vestiairecollective.com/product/omega-speedmaster-watch-44556677.shtml", first.URL)

	// Card without a separate brand element keeps the product name as title.
	second := listings[1]
	assert.Equal(t, "99887711", second.ListingID)
	assert.Equal(t, "Cartier Tank watch", second.Title)
	assert.Equal(t, 4250.0, second.Price)
}

func TestVestiaire_ExtractListings_FallbackToProductLinks(t *testing.T) {
	t.Parallel()

	p := goquery.NewVestiaire()

	html := `<html><body>
	<a href="/product/hermes-heure-h-12345678.shtml">Hermès watch</a>
	</body></html>`

	listings, err := p.ExtractListings(html, "555")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "12345678", listings[0].ListingID)
}

func TestVestiaire_ParseTotals(t *testing.T) {
	t.Parallel()

	p := goquery.NewVestiaire()

	html := `<html><body>
	<nav class="pagination-bar_pagination__a1"><a>1</a><a>2</a><a>3</a><a>4</a></nav>
	</body></html>`

	totals := p.ParseTotals(html)
	assert.Equal(t, 4, totals.Pages)
	assert.Equal(t, 4*60, totals.Items)
}

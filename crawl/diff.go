package crawl

import "github.com/fwojciec/saletrack"

// PriceChange pairs a still-listed listing with its prior price.
type PriceChange struct {
	Listing  saletrack.Listing
	OldPrice float64
}

// Changes classifies the inventory delta between two snapshots of the same
// target. Sold carries yesterday's records (the listing no longer exists
// today); Added carries today's; Repriced carries today's with the old price
// alongside.
type Changes struct {
	Sold     []saletrack.Listing
	Added    []saletrack.Listing
	Repriced []PriceChange
}

// Diff compares yesterday's listings with today's by identity key.
// Present yesterday and absent today classifies as sold; absent yesterday and
// present today as added; present in both with a different price as repriced.
// Listings present in both with an unchanged price produce no event.
//
// Diff is a pure comparison: it never mutates its inputs and writes nothing.
// Callers are responsible for ensuring today's snapshot passed coverage
// validation before trusting the Sold classification.
func Diff(yesterday, today []saletrack.Listing) *Changes {
	yesterdayByKey := make(map[saletrack.ListingKey]saletrack.Listing, len(yesterday))
	for _, l := range yesterday {
		yesterdayByKey[l.Key()] = l
	}
	todayByKey := make(map[saletrack.ListingKey]saletrack.Listing, len(today))
	for _, l := range today {
		todayByKey[l.Key()] = l
	}

	changes := &Changes{}

	for _, l := range yesterday {
		if _, ok := todayByKey[l.Key()]; !ok {
			changes.Sold = append(changes.Sold, l)
		}
	}

	for _, l := range today {
		prior, ok := yesterdayByKey[l.Key()]
		if !ok {
			changes.Added = append(changes.Added, l)
			continue
		}
		if prior.Price != 0 && l.Price != 0 && prior.Price != l.Price {
			changes.Repriced = append(changes.Repriced, PriceChange{Listing: l, OldPrice: prior.Price})
		}
	}

	return changes
}

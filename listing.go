package saletrack

import "time"

// Listing represents a single marketplace listing as observed on one results
// page during one crawl run. Listings are extracted fresh on every run and are
// not mutated after extraction.
type Listing struct {
	Platform   string  `json:"platform"`
	ListingID  string  `json:"listingId"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Condition  string  `json:"condition"`
	Country    string  `json:"country"`
	ImageURL   string  `json:"imageUrl"`
	URL        string  `json:"url"`
	SeenAtPage int     `json:"seenAtPage"`
}

// Key returns the listing's identity key. Two listings with the same key are
// the same item regardless of which page they appeared on.
func (l *Listing) Key() ListingKey {
	return ListingKey{Platform: l.Platform, ListingID: l.ListingID}
}

// Validate returns an error if the listing lacks identity fields.
func (l *Listing) Validate() error {
	if l.Platform == "" {
		return Errorf(EINVALID, "listing platform required")
	}
	if l.ListingID == "" {
		return Errorf(EINVALID, "listing ID required")
	}
	return nil
}

// ListingKey uniquely identifies a listing across pages and days.
type ListingKey struct {
	Platform  string
	ListingID string
}

// Snapshot is the full deduplicated set of listings observed for one
// platform/target on one calendar day.
type Snapshot struct {
	Platform string    `json:"platform"`
	Target   string    `json:"target"`
	Date     time.Time `json:"date"`
	Listings []Listing `json:"listings"`
}

// ByKey indexes the snapshot's listings by identity key.
func (s *Snapshot) ByKey() map[ListingKey]Listing {
	m := make(map[ListingKey]Listing, len(s.Listings))
	for _, l := range s.Listings {
		m[l.Key()] = l
	}
	return m
}

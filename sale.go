package saletrack

import (
	"context"
	"time"
)

// Sale classifications produced by the diff engine.
const (
	ClassificationSold    = "sold"
	ClassificationNew     = "new"
	ClassificationUpdated = "updated"
)

// DetectedSale records a listing that was present in yesterday's snapshot and
// absent from today's validated snapshot. The price is the last listed price,
// not a confirmed transaction price. A sale is created once by the diff engine
// and never mutated afterwards.
type DetectedSale struct {
	Platform      string    `json:"platform"`
	ListingID     string    `json:"listingId"`
	DetectionDate time.Time `json:"detectionDate"`
	Title         string    `json:"title"`
	LastSeenPrice float64   `json:"lastSeenPrice"`
	Currency      string    `json:"currency"`
	URL           string    `json:"url"`

	// DaysListed is the number of days between the listing's first observed
	// snapshot and the detection date. Nil when first-seen tracking has no
	// record of the listing.
	DaysListed *int `json:"daysListed"`
}

// Validate returns an error if the sale lacks identity fields.
func (s *DetectedSale) Validate() error {
	if s.Platform == "" {
		return Errorf(EINVALID, "sale platform required")
	}
	if s.ListingID == "" {
		return Errorf(EINVALID, "sale listing ID required")
	}
	if s.DetectionDate.IsZero() {
		return Errorf(EINVALID, "sale detection date required")
	}
	return nil
}

// SnapshotService persists daily inventory snapshots and detected sales.
//
// SaveSnapshot upserts idempotently: saving the same platform/target/date
// twice replaces rather than duplicates, and a listing can never appear twice
// in one day's snapshot. SaveSale ignores a duplicate
// (platform, listing ID, detection date) rather than failing the run; the
// uniqueness is enforced by the storage schema, not application logic.
type SnapshotService interface {
	// SaveSnapshot persists the deduplicated listing set for one day.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetSnapshot returns the stored listing set for the given day, or an
	// empty slice if no snapshot exists.
	GetSnapshot(ctx context.Context, platform, target string, date time.Time) ([]Listing, error)

	// SaveSale records a detected sale. Duplicate sales for the same
	// (platform, listing ID, detection date) are silently ignored.
	SaveSale(ctx context.Context, sale *DetectedSale) error

	// SalesOn returns the sales detected on the given date for a platform.
	SalesOn(ctx context.Context, platform string, date time.Time) ([]*DetectedSale, error)

	// FirstSeen returns the earliest snapshot date on which the listing was
	// observed. Returns ENOTFOUND if the listing has never been snapshotted.
	FirstSeen(ctx context.Context, platform, listingID string) (time.Time, error)

	// SaveRun records a crawl run result as an audit log entry.
	SaveRun(ctx context.Context, run *RunResult) error
}

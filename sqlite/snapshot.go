package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/saletrack"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ saletrack.SnapshotService = (*SnapshotService)(nil)

// SnapshotService implements saletrack.SnapshotService using SQLite.
type SnapshotService struct {
	db *DB
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// hashListing computes xxHash of the listing's content fields and returns a
// hex string. The hash changes when the observable content of a listing
// changes, which makes day-over-day comparisons cheap.
func hashListing(l *saletrack.Listing) string {
	h := xxhash.New()
	_, _ = h.WriteString(l.Title)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(l.Currency)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(l.Condition)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(l.Country)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(l.URL)
	var buf [8]byte
	sum := h.Sum64()
	for i := 0; i < 8; i++ {
		buf[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(buf[:])
}

// SaveSnapshot persists the deduplicated listing set for one day. Saving the
// same platform/target/date twice replaces the previous rows, so re-running a
// crawl for a day is idempotent.
func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *saletrack.Snapshot) error {
	if snapshot.Platform == "" || snapshot.Target == "" {
		return saletrack.Errorf(saletrack.EINVALID, "snapshot platform and target required")
	}
	if snapshot.Date.IsZero() {
		return saletrack.Errorf(saletrack.EINVALID, "snapshot date required")
	}

	day := formatDay(snapshot.Date)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range snapshot.Listings {
		l := &snapshot.Listings[i]
		if err := l.Validate(); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO daily_inventory
				(platform, target, listing_id, snapshot_date, title, price, currency, condition, country, image_url, url, seen_at_page, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, l.Platform, snapshot.Target, l.ListingID, day, l.Title, l.Price, l.Currency,
			l.Condition, l.Country, l.ImageURL, l.URL, l.SeenAtPage, hashListing(l))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSnapshot returns the stored listing set for the given day, or an empty
// slice if no snapshot exists.
func (s *SnapshotService) GetSnapshot(ctx context.Context, platform, target string, date time.Time) ([]saletrack.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, listing_id, title, price, currency, condition, country, image_url, url, seen_at_page
		FROM daily_inventory
		WHERE platform = ? AND target = ? AND snapshot_date = ?
		ORDER BY listing_id
	`, platform, target, formatDay(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []saletrack.Listing{}
	for rows.Next() {
		var l saletrack.Listing
		if err := rows.Scan(&l.Platform, &l.ListingID, &l.Title, &l.Price, &l.Currency,
			&l.Condition, &l.Country, &l.ImageURL, &l.URL, &l.SeenAtPage); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// SaveSale records a detected sale. A duplicate (platform, listing ID,
// detection date) is silently ignored, so repeated detection runs for the
// same day never produce duplicate sale rows.
func (s *SnapshotService) SaveSale(ctx context.Context, sale *saletrack.DetectedSale) error {
	if err := sale.Validate(); err != nil {
		return err
	}

	var daysListed any
	if sale.DaysListed != nil {
		daysListed = *sale.DaysListed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO detected_sales
			(platform, listing_id, detection_date, title, last_seen_price, currency, url, days_listed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sale.Platform, sale.ListingID, formatDay(sale.DetectionDate), sale.Title,
		sale.LastSeenPrice, sale.Currency, sale.URL, daysListed)

	return err
}

// SalesOn returns the sales detected on the given date for a platform.
func (s *SnapshotService) SalesOn(ctx context.Context, platform string, date time.Time) ([]*saletrack.DetectedSale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, listing_id, detection_date, title, last_seen_price, currency, url, days_listed
		FROM detected_sales
		WHERE platform = ? AND detection_date = ?
		ORDER BY listing_id
	`, platform, formatDay(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*saletrack.DetectedSale
	for rows.Next() {
		var sale saletrack.DetectedSale
		var detectionDate string
		var daysListed sql.NullInt64

		if err := rows.Scan(&sale.Platform, &sale.ListingID, &detectionDate, &sale.Title,
			&sale.LastSeenPrice, &sale.Currency, &sale.URL, &daysListed); err != nil {
			return nil, err
		}

		sale.DetectionDate, err = parseDay(detectionDate, "detection_date")
		if err != nil {
			return nil, err
		}
		if daysListed.Valid {
			d := int(daysListed.Int64)
			sale.DaysListed = &d
		}

		sales = append(sales, &sale)
	}

	return sales, rows.Err()
}

// FirstSeen returns the earliest snapshot date on which the listing was
// observed. Returns ENOTFOUND if the listing has never been snapshotted.
func (s *SnapshotService) FirstSeen(ctx context.Context, platform, listingID string) (time.Time, error) {
	var day sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(snapshot_date) FROM daily_inventory
		WHERE platform = ? AND listing_id = ?
	`, platform, listingID).Scan(&day)
	if err != nil {
		return time.Time{}, err
	}
	if !day.Valid {
		return time.Time{}, saletrack.Errorf(saletrack.ENOTFOUND, "listing %s/%s has never been snapshotted", platform, listingID)
	}

	return parseDay(day.String, "snapshot_date")
}

// SaveRun records a crawl run result as an audit log entry.
func (s *SnapshotService) SaveRun(ctx context.Context, run *saletrack.RunResult) error {
	if err := run.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs
			(id, platform, target, pages_attempted, pages_total, items_collected, items_expected, consecutive_failures, terminated_reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), run.Platform, run.Target, run.PagesAttempted, run.PagesTotal,
		run.ItemsCollected, run.ItemsExpected, run.ConsecutiveFailures, run.TerminatedReason,
		time.Now().UTC().Format(time.RFC3339))

	return err
}

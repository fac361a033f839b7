package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
)

// Detection summarizes one detection pass for one target/day.
type Detection struct {
	Platform string
	Target   string
	Date     time.Time
	Changes  *Changes
	Sales    []*saletrack.DetectedSale
	Verdict  saletrack.CoverageVerdict

	// FirstRun is set when no prior snapshot existed; the snapshot is stored
	// as the baseline and everything counts as new inventory.
	FirstRun bool

	// ScraperIncomplete is set when the coverage validator rejected the run.
	// The snapshot is still persisted but no sales are recorded.
	ScraperIncomplete bool
}

// Detector runs the full detect pipeline for one crawl run: persist today's
// snapshot, validate coverage, diff against yesterday, and record detected
// sales. The run metadata must come straight from the Controller that
// produced it; the Detector never recomputes or defaults page counts.
type Detector struct {
	Snapshots saletrack.SnapshotService
	Validator *Validator
	Logger    *slog.Logger

	// Now is the clock used to derive today's snapshot date.
	// Nil means time.Now.
	Now func() time.Time
}

// Process persists today's snapshot and, when the run's coverage holds up,
// records the detected sales. Re-running Process for a date that already has
// sale records yields the same classification but no additional stored rows;
// the uniqueness lives in the store's schema.
func (d *Detector) Process(ctx context.Context, run *saletrack.RunResult, today []saletrack.Listing) (*Detection, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}

	date := day(d.now())
	det := &Detection{
		Platform: run.Platform,
		Target:   run.Target,
		Date:     date,
	}

	yesterday, err := d.Snapshots.GetSnapshot(ctx, run.Platform, run.Target, date.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	// The snapshot is persisted before any verdict so tomorrow's diff has a
	// baseline even when today's run was too thin to trust.
	snapshot := &saletrack.Snapshot{
		Platform: run.Platform,
		Target:   run.Target,
		Date:     date,
		Listings: today,
	}
	if err := d.Snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := d.Snapshots.SaveRun(ctx, run); err != nil {
		return nil, err
	}

	if len(yesterday) == 0 {
		det.FirstRun = true
		det.Verdict = saletrack.CoverageVerdict{Valid: true, Reason: "first run, baseline stored"}
		d.log("first run, baseline stored", det, run)
		return det, nil
	}

	det.Verdict = d.Validator.Validate(run, len(yesterday))
	if !det.Verdict.Valid {
		det.ScraperIncomplete = true
		d.log("sale detection suppressed", det, run)
		return det, nil
	}

	det.Changes = Diff(yesterday, today)

	for _, sold := range det.Changes.Sold {
		sale := &saletrack.DetectedSale{
			Platform:      sold.Platform,
			ListingID:     sold.ListingID,
			DetectionDate: date,
			Title:         sold.Title,
			LastSeenPrice: sold.Price,
			Currency:      sold.Currency,
			URL:           sold.URL,
			DaysListed:    d.daysListed(ctx, sold, date),
		}
		if err := d.Snapshots.SaveSale(ctx, sale); err != nil {
			return nil, err
		}
		det.Sales = append(det.Sales, sale)
	}

	d.log("sale detection completed", det, run)
	return det, nil
}

// daysListed derives how long the listing was on sale from its first observed
// snapshot. Nil when the listing predates tracking.
func (d *Detector) daysListed(ctx context.Context, sold saletrack.Listing, date time.Time) *int {
	first, err := d.Snapshots.FirstSeen(ctx, sold.Platform, sold.ListingID)
	if err != nil {
		return nil
	}
	days := int(date.Sub(day(first)).Hours() / 24)
	if days < 0 {
		return nil
	}
	return &days
}

func (d *Detector) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Detector) log(msg string, det *Detection, run *saletrack.RunResult) {
	if d.Logger == nil {
		return
	}
	sold, added, repriced := 0, 0, 0
	if det.Changes != nil {
		sold, added, repriced = len(det.Changes.Sold), len(det.Changes.Added), len(det.Changes.Repriced)
	}
	d.Logger.Info(msg,
		"platform", det.Platform,
		"target", det.Target,
		"date", det.Date.Format(time.DateOnly),
		"items", run.ItemsCollected,
		"sold", sold,
		"new", added,
		"repriced", repriced,
		"valid", det.Verdict.Valid,
		"reason", det.Verdict.Reason,
	)
}

// day truncates a time to its UTC calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

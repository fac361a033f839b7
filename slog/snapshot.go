package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
)

// Ensure LoggingSnapshotService implements saletrack.SnapshotService.
var _ saletrack.SnapshotService = (*LoggingSnapshotService)(nil)

// LoggingSnapshotService wraps a SnapshotService with debug logging on the
// write paths.
type LoggingSnapshotService struct {
	next   saletrack.SnapshotService
	logger *slog.Logger
}

// NewLoggingSnapshotService creates a new LoggingSnapshotService.
func NewLoggingSnapshotService(next saletrack.SnapshotService, logger *slog.Logger) *LoggingSnapshotService {
	return &LoggingSnapshotService{next: next, logger: logger}
}

// SaveSnapshot logs the snapshot size and delegates to the wrapped service.
func (s *LoggingSnapshotService) SaveSnapshot(ctx context.Context, snapshot *saletrack.Snapshot) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save snapshot",
			"platform", snapshot.Platform,
			"target", snapshot.Target,
			"listings", len(snapshot.Listings),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveSnapshot(ctx, snapshot)
}

// GetSnapshot delegates to the wrapped service.
func (s *LoggingSnapshotService) GetSnapshot(ctx context.Context, platform, target string, date time.Time) ([]saletrack.Listing, error) {
	return s.next.GetSnapshot(ctx, platform, target, date)
}

// SaveSale logs the detected sale and delegates to the wrapped service.
func (s *LoggingSnapshotService) SaveSale(ctx context.Context, sale *saletrack.DetectedSale) (err error) {
	defer func() {
		s.logger.Info("sale detected",
			"platform", sale.Platform,
			"listing_id", sale.ListingID,
			"price", sale.LastSeenPrice,
			"err", err,
		)
	}()
	return s.next.SaveSale(ctx, sale)
}

// SalesOn delegates to the wrapped service.
func (s *LoggingSnapshotService) SalesOn(ctx context.Context, platform string, date time.Time) ([]*saletrack.DetectedSale, error) {
	return s.next.SalesOn(ctx, platform, date)
}

// FirstSeen delegates to the wrapped service.
func (s *LoggingSnapshotService) FirstSeen(ctx context.Context, platform, listingID string) (time.Time, error) {
	return s.next.FirstSeen(ctx, platform, listingID)
}

// SaveRun logs the run outcome and delegates to the wrapped service.
func (s *LoggingSnapshotService) SaveRun(ctx context.Context, run *saletrack.RunResult) (err error) {
	defer func() {
		s.logger.Debug("save run",
			"platform", run.Platform,
			"target", run.Target,
			"reason", run.TerminatedReason,
			"err", err,
		)
	}()
	return s.next.SaveRun(ctx, run)
}

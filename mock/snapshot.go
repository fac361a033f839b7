package mock

import (
	"context"
	"time"

	"github.com/fwojciec/saletrack"
)

var _ saletrack.SnapshotService = (*SnapshotService)(nil)

// SnapshotService is a mock implementation of saletrack.SnapshotService.
type SnapshotService struct {
	SaveSnapshotFn func(ctx context.Context, snapshot *saletrack.Snapshot) error
	GetSnapshotFn  func(ctx context.Context, platform, target string, date time.Time) ([]saletrack.Listing, error)
	SaveSaleFn     func(ctx context.Context, sale *saletrack.DetectedSale) error
	SalesOnFn      func(ctx context.Context, platform string, date time.Time) ([]*saletrack.DetectedSale, error)
	FirstSeenFn    func(ctx context.Context, platform, listingID string) (time.Time, error)
	SaveRunFn      func(ctx context.Context, run *saletrack.RunResult) error
}

func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *saletrack.Snapshot) error {
	return s.SaveSnapshotFn(ctx, snapshot)
}

func (s *SnapshotService) GetSnapshot(ctx context.Context, platform, target string, date time.Time) ([]saletrack.Listing, error) {
	return s.GetSnapshotFn(ctx, platform, target, date)
}

func (s *SnapshotService) SaveSale(ctx context.Context, sale *saletrack.DetectedSale) error {
	return s.SaveSaleFn(ctx, sale)
}

func (s *SnapshotService) SalesOn(ctx context.Context, platform string, date time.Time) ([]*saletrack.DetectedSale, error) {
	if s.SalesOnFn == nil {
		return nil, nil
	}
	return s.SalesOnFn(ctx, platform, date)
}

func (s *SnapshotService) FirstSeen(ctx context.Context, platform, listingID string) (time.Time, error) {
	if s.FirstSeenFn == nil {
		return time.Time{}, saletrack.Errorf(saletrack.ENOTFOUND, "listing not tracked")
	}
	return s.FirstSeenFn(ctx, platform, listingID)
}

func (s *SnapshotService) SaveRun(ctx context.Context, run *saletrack.RunResult) error {
	if s.SaveRunFn == nil {
		return nil
	}
	return s.SaveRunFn(ctx, run)
}

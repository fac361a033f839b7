package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/crawl"
	"github.com/fwojciec/saletrack/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySnapshots is a SnapshotService mock backed by in-memory maps, enough
// to exercise the detector pipeline without a database.
type memorySnapshots struct {
	mock.SnapshotService

	snapshots map[string][]saletrack.Listing
	sales     map[string]*saletrack.DetectedSale
	runs      []*saletrack.RunResult
	firstSeen map[string]time.Time
}

func newMemorySnapshots() *memorySnapshots {
	m := &memorySnapshots{
		snapshots: make(map[string][]saletrack.Listing),
		sales:     make(map[string]*saletrack.DetectedSale),
		firstSeen: make(map[string]time.Time),
	}
	m.SaveSnapshotFn = func(ctx context.Context, s *saletrack.Snapshot) error {
		m.snapshots[snapshotKey(s.Platform, s.Target, s.Date)] = s.Listings
		return nil
	}
	m.GetSnapshotFn = func(ctx context.Context, platform, target string, date time.Time) ([]saletrack.Listing, error) {
		return m.snapshots[snapshotKey(platform, target, date)], nil
	}
	m.SaveSaleFn = func(ctx context.Context, sale *saletrack.DetectedSale) error {
		key := sale.Platform + "|" + sale.ListingID + "|" + sale.DetectionDate.Format(time.DateOnly)
		if _, ok := m.sales[key]; ok {
			return nil // duplicate ignored, as the schema constraint does
		}
		m.sales[key] = sale
		return nil
	}
	m.FirstSeenFn = func(ctx context.Context, platform, listingID string) (time.Time, error) {
		if first, ok := m.firstSeen[platform+"|"+listingID]; ok {
			return first, nil
		}
		return time.Time{}, saletrack.Errorf(saletrack.ENOTFOUND, "listing not tracked")
	}
	m.SaveRunFn = func(ctx context.Context, run *saletrack.RunResult) error {
		m.runs = append(m.runs, run)
		return nil
	}
	return m
}

func snapshotKey(platform, target string, date time.Time) string {
	return platform + "|" + target + "|" + date.UTC().Format(time.DateOnly)
}

var detectNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

func newDetector(store *memorySnapshots) *crawl.Detector {
	return &crawl.Detector{
		Snapshots: store,
		Validator: &crawl.Validator{Config: crawl.ValidatorConfig{
			MinItemsFloor:     1,
			MinPageCoverage:   0.10,
			MaxCountChangePct: 60.0,
		}},
		Now: func() time.Time { return detectNow },
	}
}

func validRun(items int) *saletrack.RunResult {
	return &saletrack.RunResult{
		Platform:       "chrono24",
		Target:         "omega seamaster",
		PagesAttempted: 10,
		PagesTotal:     10,
		ItemsCollected: items,
	}
}

func seedYesterday(store *memorySnapshots, listings ...saletrack.Listing) {
	yesterday := detectNow.AddDate(0, 0, -1)
	store.snapshots[snapshotKey("chrono24", "omega seamaster", yesterday)] = listings
}

func TestDetector_DetectsSales(t *testing.T) {
	t.Parallel()

	store := newMemorySnapshots()
	seedYesterday(store, listing("L1", 100), listing("L2", 200))
	store.firstSeen["chrono24|L1"] = detectNow.AddDate(0, 0, -14)

	today := []saletrack.Listing{listing("L2", 200), listing("L3", 50)}

	det, err := newDetector(store).Process(context.Background(), validRun(len(today)), today)

	require.NoError(t, err)
	assert.True(t, det.Verdict.Valid)
	assert.False(t, det.ScraperIncomplete)

	require.Len(t, det.Sales, 1)
	sale := det.Sales[0]
	assert.Equal(t, "L1", sale.ListingID)
	assert.Equal(t, 100.0, sale.LastSeenPrice)
	require.NotNil(t, sale.DaysListed)
	assert.Equal(t, 14, *sale.DaysListed)

	require.Len(t, det.Changes.Added, 1)
	assert.Equal(t, "L3", det.Changes.Added[0].ListingID)

	// Today's snapshot was persisted.
	stored := store.snapshots[snapshotKey("chrono24", "omega seamaster", detectNow)]
	assert.Len(t, stored, 2)

	// The run landed in the audit log.
	assert.Len(t, store.runs, 1)
}

func TestDetector_SuppressesSalesOnInvalidCoverage(t *testing.T) {
	t.Parallel()

	// Same inventory difference as the detection test, but only 1 of 50
	// advertised pages was attempted. No sales may be recorded; the snapshot
	// is still persisted as tomorrow's baseline.
	store := newMemorySnapshots()
	seedYesterday(store, listing("L1", 100), listing("L2", 200))

	today := []saletrack.Listing{listing("L2", 200), listing("L3", 50)}
	run := &saletrack.RunResult{
		Platform:       "chrono24",
		Target:         "omega seamaster",
		PagesAttempted: 1,
		PagesTotal:     50,
		ItemsCollected: len(today),
	}

	det, err := newDetector(store).Process(context.Background(), run, today)

	require.NoError(t, err)
	assert.True(t, det.ScraperIncomplete)
	assert.False(t, det.Verdict.Valid)
	assert.Contains(t, det.Verdict.Reason, "insufficient page coverage")
	assert.Empty(t, det.Sales)
	assert.Empty(t, store.sales)

	stored := store.snapshots[snapshotKey("chrono24", "omega seamaster", detectNow)]
	assert.Len(t, stored, 2)
}

func TestDetector_FirstRunStoresBaseline(t *testing.T) {
	t.Parallel()

	store := newMemorySnapshots()
	today := []saletrack.Listing{listing("L1", 100)}

	det, err := newDetector(store).Process(context.Background(), validRun(1), today)

	require.NoError(t, err)
	assert.True(t, det.FirstRun)
	assert.Empty(t, det.Sales)
	assert.Len(t, store.snapshots, 1)
}

func TestDetector_RepeatedDetectionIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemorySnapshots()
	seedYesterday(store, listing("L1", 100), listing("L2", 200))
	today := []saletrack.Listing{listing("L2", 200)}

	detector := newDetector(store)

	first, err := detector.Process(context.Background(), validRun(1), today)
	require.NoError(t, err)
	require.Len(t, first.Sales, 1)
	require.Len(t, store.sales, 1)

	second, err := detector.Process(context.Background(), validRun(1), today)
	require.NoError(t, err)

	// Same classification, zero additional stored rows.
	assert.Len(t, second.Sales, 1)
	assert.Len(t, store.sales, 1)
}

func TestDetector_UnknownFirstSeenLeavesDaysListedNil(t *testing.T) {
	t.Parallel()

	store := newMemorySnapshots()
	seedYesterday(store, listing("L1", 100))

	det, err := newDetector(store).Process(context.Background(), validRun(1), []saletrack.Listing{listing("L9", 10)})

	require.NoError(t, err)
	require.Len(t, det.Sales, 1)
	assert.Nil(t, det.Sales[0].DaysListed)
}

func TestDetector_RejectsRunWithoutIdentity(t *testing.T) {
	t.Parallel()

	store := newMemorySnapshots()

	_, err := newDetector(store).Process(context.Background(), &saletrack.RunResult{}, nil)

	require.Error(t, err)
	assert.Equal(t, saletrack.EINVALID, saletrack.ErrorCode(err))
}

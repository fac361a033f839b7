package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkSnapshotSave measures persisting a full day's inventory, which is
// the write-heavy step of a crawl run.
func BenchmarkSnapshotSave(b *testing.B) {
	for _, size := range []int{120, 1200} {
		b.Run(fmt.Sprintf("listings_%d", size), func(b *testing.B) {
			benchmarkSnapshotSave(b, size)
		})
	}
}

func benchmarkSnapshotSave(b *testing.B, listingsPerDay int) {
	b.Helper()

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	defer func() {
		db.Close()
		// Clean up WAL files if they exist
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	svc := sqlite.NewSnapshotService(db)
	ctx := context.Background()

	listings := make([]saletrack.Listing, 0, listingsPerDay)
	for i := 0; i < listingsPerDay; i++ {
		listings = append(listings, saletrack.Listing{
			Platform:  "chrono24",
			ListingID: fmt.Sprintf("%d", 10000000+i),
			Title:     fmt.Sprintf("Omega Speedmaster Professional %d", i),
			Price:     5000 + float64(i),
			Currency:  "EUR",
			Country:   "ES",
			URL:       fmt.Sprintf("https://www.chrono24.es/omega/x--id%d.htm", 10000000+i),
		})
	}

	// Reset timer to exclude setup time
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		snapshot := &saletrack.Snapshot{
			Platform: "chrono24",
			Target:   "omega speedmaster",
			Date:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Listings: listings,
		}
		if err := svc.SaveSnapshot(ctx, snapshot); err != nil {
			b.Fatal(err)
		}
	}
}

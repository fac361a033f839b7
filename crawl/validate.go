package crawl

import (
	"fmt"

	"github.com/fwojciec/saletrack"
)

// Default validator thresholds.
const (
	DefaultMinItemsFloor     = 100
	DefaultMinPageCoverage   = 0.10
	DefaultMaxCountChangePct = 10.0
)

// ValidatorConfig holds the coverage thresholds. Explicit construction keeps
// thresholds testable per scenario.
type ValidatorConfig struct {
	// MinItemsFloor is the smallest plausible item count for a run. Zero
	// means DefaultMinItemsFloor.
	MinItemsFloor int

	// MinPageCoverage is the minimum fraction of advertised pages a run must
	// have attempted. Zero means DefaultMinPageCoverage.
	MinPageCoverage float64

	// MaxCountChangePct is the largest tolerated percentage change in item
	// count versus the prior run, unless coverage is provably complete.
	// Zero means DefaultMaxCountChangePct.
	MaxCountChangePct float64
}

func (c ValidatorConfig) minItemsFloor() int {
	if c.MinItemsFloor <= 0 {
		return DefaultMinItemsFloor
	}
	return c.MinItemsFloor
}

func (c ValidatorConfig) minPageCoverage() float64 {
	if c.MinPageCoverage <= 0 {
		return DefaultMinPageCoverage
	}
	return c.MinPageCoverage
}

func (c ValidatorConfig) maxCountChangePct() float64 {
	if c.MaxCountChangePct <= 0 {
		return DefaultMaxCountChangePct
	}
	return c.MaxCountChangePct
}

// Validator decides whether a crawl run's snapshot is complete enough to diff
// against history. It exists to keep partial crawls out of the diff engine:
// a listing that went unscraped looks identical to a listing that sold.
type Validator struct {
	Config ValidatorConfig
}

// Validate evaluates the run against yesterday's stored item count for the
// same target. Rules are checked in order; the first violated rule sets the
// verdict's reason.
func (v *Validator) Validate(run *saletrack.RunResult, yesterdayCount int) saletrack.CoverageVerdict {
	if run.ItemsCollected < v.Config.minItemsFloor() {
		return saletrack.CoverageVerdict{
			Valid: false,
			Reason: fmt.Sprintf("below minimum floor: %d items collected, floor is %d",
				run.ItemsCollected, v.Config.minItemsFloor()),
		}
	}

	if run.PagesTotal > 0 && run.PagesAttempted > 0 {
		coverage := float64(run.PagesAttempted) / float64(run.PagesTotal)
		if coverage < v.Config.minPageCoverage() {
			return saletrack.CoverageVerdict{
				Valid: false,
				Reason: fmt.Sprintf("insufficient page coverage: %d/%d pages (%.1f%%)",
					run.PagesAttempted, run.PagesTotal, coverage*100),
			}
		}
	}

	if yesterdayCount > 0 && !provablyComplete(run) {
		changePct := abs(float64(run.ItemsCollected-yesterdayCount)) / float64(yesterdayCount) * 100
		if changePct > v.Config.maxCountChangePct() {
			return saletrack.CoverageVerdict{
				Valid: false,
				Reason: fmt.Sprintf("coverage inconsistent versus prior run: %.1f%% change (yesterday %d, today %d)",
					changePct, yesterdayCount, run.ItemsCollected),
			}
		}
	}

	return saletrack.CoverageVerdict{Valid: true, Reason: "coverage acceptable"}
}

// provablyComplete reports whether the run attempted every advertised page.
func provablyComplete(run *saletrack.RunResult) bool {
	return run.PagesTotal > 0 && run.PagesAttempted >= run.PagesTotal
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

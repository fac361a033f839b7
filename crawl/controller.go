package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
)

// DefaultConsecutiveFailureLimit is the number of consecutively failed pages
// after which a run stops crawling the target. Two pages failing back to back
// means the marketplace is blocking further progress, not hiccuping.
const DefaultConsecutiveFailureLimit = 2

// Config holds the per-run crawl policy. It is passed in explicitly at
// construction so tests can vary thresholds without process-wide state.
type Config struct {
	// MaxPages limits how many pages are crawled per target.
	// Zero means all advertised pages.
	MaxPages int

	// RetryDelays are the waits between retries of a failed page. The number
	// of retries is len(RetryDelays). Nil means DefaultRetryDelays.
	RetryDelays []time.Duration

	// PageDelay is the pause between page requests. It is politeness, not
	// correctness; the coverage validator is the correctness control.
	PageDelay time.Duration

	// ConsecutiveFailureLimit stops the run early once this many pages fail
	// in a row. Zero means DefaultConsecutiveFailureLimit.
	ConsecutiveFailureLimit int
}

func (c Config) retryDelays() []time.Duration {
	if c.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return c.RetryDelays
}

func (c Config) failureLimit() int {
	if c.ConsecutiveFailureLimit <= 0 {
		return DefaultConsecutiveFailureLimit
	}
	return c.ConsecutiveFailureLimit
}

// Controller crawls all result pages for one target, deduplicating listings
// across pages. Listings shuffle between pages while a crawl is in flight
// (live reordering), so the same listing routinely appears on two pages; the
// dedup set keyed by (platform, listing ID) counts it once.
//
// A Controller runs one target at a time over its single render session.
// Concurrent targets each need their own Controller and session.
type Controller struct {
	Navigator *Navigator
	Config    Config
	Logger    *slog.Logger
}

// Run crawls the target and returns the run's coverage metadata together with
// the deduplicated listing set. The RunResult is returned even when the run
// terminated early; the error is non-nil only for context cancellation.
func (c *Controller) Run(ctx context.Context, target string) (*saletrack.RunResult, []saletrack.Listing, error) {
	platform := c.Navigator.Platform
	run := &saletrack.RunResult{
		Platform: platform.Name(),
		Target:   target,
	}

	seen := make(map[saletrack.ListingKey]saletrack.Listing)
	var order []saletrack.ListingKey

	collect := func(listings []saletrack.Listing) int {
		added := 0
		for _, l := range listings {
			key := l.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = l
			order = append(order, key)
			added++
		}
		return added
	}

	// Pre-scan: page 1 both seeds the dedup set and carries the advertised
	// totals the validator needs.
	firstPage, err := c.fetchPage(ctx, target, 1)
	run.PagesAttempted = 1
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			run.TerminatedReason = saletrack.TerminatedCanceled
			return run, nil, err
		}
		// Without page 1 there is no pagination state to continue from.
		run.ConsecutiveFailures = 1
		run.TerminatedReason = saletrack.TerminatedConsecutiveFailures
		c.logRun(run, "first page failed, aborting target")
		return run, nil, nil
	}

	totals := c.scanTotals(ctx, run)
	collect(firstPage.Listings)

	limit := totals.Pages
	if c.Config.MaxPages > 0 && (limit == 0 || c.Config.MaxPages < limit) {
		limit = c.Config.MaxPages
	}
	if limit < 1 {
		limit = 1
	}

	if c.Logger != nil {
		c.Logger.Info("crawl started",
			"platform", run.Platform,
			"target", target,
			"pages_total", totals.Pages,
			"items_expected", totals.Items,
			"pages_to_crawl", limit,
		)
	}

	consecutiveFailures := 0
	run.TerminatedReason = saletrack.TerminatedCompleted

	for page := 2; page <= limit; page++ {
		if err := c.pause(ctx); err != nil {
			run.TerminatedReason = saletrack.TerminatedCanceled
			break
		}

		result, err := c.fetchPage(ctx, target, page)
		run.PagesAttempted++

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				run.TerminatedReason = saletrack.TerminatedCanceled
				break
			}
			consecutiveFailures++
			if c.Logger != nil {
				c.Logger.Warn("page failed",
					"platform", run.Platform,
					"target", target,
					"page", page,
					"consecutive_failures", consecutiveFailures,
					"attempts", attemptTrace(result),
				)
			}
			if consecutiveFailures >= c.Config.failureLimit() {
				run.TerminatedReason = saletrack.TerminatedConsecutiveFailures
				break
			}
			continue
		}

		consecutiveFailures = 0
		added := collect(result.Listings)
		if c.Logger != nil {
			c.Logger.Info("page crawled",
				"platform", run.Platform,
				"target", target,
				"page", page,
				"extracted", len(result.Listings),
				"new", added,
				"total", len(seen),
			)
		}
	}

	if run.TerminatedReason == saletrack.TerminatedCompleted && c.Config.MaxPages > 0 && limit == c.Config.MaxPages && totals.Pages > limit {
		run.TerminatedReason = saletrack.TerminatedPageLimit
	}

	run.ConsecutiveFailures = consecutiveFailures
	run.ItemsCollected = len(seen)

	listings := make([]saletrack.Listing, 0, len(order))
	for _, key := range order {
		listings = append(listings, seen[key])
	}

	c.logRun(run, "crawl finished")
	return run, listings, ctxErr(ctx, run)
}

// fetchPage runs the navigator with bounded retries for one page.
func (c *Controller) fetchPage(ctx context.Context, target string, page int) (*PageResult, error) {
	return fetchWithRetryDelays(ctx, func(ctx context.Context) (*PageResult, error) {
		return c.Navigator.FetchPage(ctx, target, page)
	}, c.Config.retryDelays())
}

// scanTotals parses the advertised totals from the already rendered first
// page and records them on the run.
func (c *Controller) scanTotals(ctx context.Context, run *saletrack.RunResult) saletrack.Totals {
	html, err := c.Navigator.Session.HTML(ctx)
	if err != nil {
		return saletrack.Totals{}
	}
	totals := c.Navigator.Platform.ParseTotals(html)
	run.PagesTotal = totals.Pages
	run.ItemsExpected = totals.Items
	return totals
}

func (c *Controller) pause(ctx context.Context) error {
	if c.Config.PageDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Config.PageDelay):
		return nil
	}
}

func (c *Controller) logRun(run *saletrack.RunResult, msg string) {
	if c.Logger == nil {
		return
	}
	variance := 0
	if run.ItemsExpected > 0 {
		variance = run.ItemsCollected - run.ItemsExpected
	}
	c.Logger.Info(msg,
		"platform", run.Platform,
		"target", run.Target,
		"pages_attempted", run.PagesAttempted,
		"pages_total", run.PagesTotal,
		"items_collected", run.ItemsCollected,
		"items_expected", run.ItemsExpected,
		"variance", variance,
		"terminated", run.TerminatedReason,
	)
}

func attemptTrace(result *PageResult) []string {
	if result == nil {
		return nil
	}
	trace := make([]string, 0, len(result.Attempts))
	for _, a := range result.Attempts {
		trace = append(trace, string(a.Strategy)+":"+string(a.Outcome))
	}
	return trace
}

func ctxErr(ctx context.Context, run *saletrack.RunResult) error {
	if run.TerminatedReason == saletrack.TerminatedCanceled {
		return ctx.Err()
	}
	return nil
}

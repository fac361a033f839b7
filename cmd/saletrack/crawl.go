package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/crawl"
	"golang.org/x/sync/errgroup"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	platform, err := deps.Platforms.Get(c.Platform)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Known platforms: %v\n", saletrack.ErrorMessage(err), deps.Platforms.Names())
		return err
	}

	// A dead resolver means challenged pages will fail, not that the crawl
	// cannot start.
	if err := deps.Resolver.Ping(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: challenge resolver unavailable, rescue disabled: %s\n", saletrack.ErrorMessage(err))
	}

	validator := &crawl.Validator{
		Config: crawl.ValidatorConfig{
			MinItemsFloor:     c.MinItems,
			MinPageCoverage:   c.MinCoverage,
			MaxCountChangePct: c.MaxChange,
		},
	}
	detector := &crawl.Detector{
		Snapshots: deps.Snapshots,
		Validator: validator,
		Logger:    deps.Logger,
	}

	var images saletrack.ImageStore
	if c.Images != "" {
		images = deps.NewImageStore(c.Images)
	}

	var out sync.Mutex
	report := func(format string, args ...any) {
		out.Lock()
		defer out.Unlock()
		fmt.Fprintf(deps.Stdout, format, args...)
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)

	for _, target := range c.Targets {
		target := target
		g.Go(func() error {
			// Each target gets its own session; sessions hold cookie and
			// document state and are not safe to share.
			session, err := deps.NewSession()
			if err != nil {
				return fmt.Errorf("starting session for %q: %w", target, err)
			}
			defer session.Close()

			controller := &crawl.Controller{
				Navigator: &crawl.Navigator{
					Session:  session,
					Resolver: deps.Resolver,
					Platform: platform,
					Logger:   deps.Logger,
				},
				Config: crawl.Config{
					MaxPages:  c.MaxPages,
					PageDelay: c.PageDelay,
				},
				Logger: deps.Logger,
			}

			run, listings, err := controller.Run(ctx, target)
			if err != nil {
				return err
			}

			det, err := detector.Process(ctx, run, listings)
			if err != nil {
				return fmt.Errorf("processing %q: %w", target, err)
			}

			switch {
			case det.FirstRun:
				report("%s %q: %d listings, first run, baseline stored\n",
					c.Platform, target, run.ItemsCollected)
			case det.ScraperIncomplete:
				report("%s %q: %d listings, detection suppressed: %s\n",
					c.Platform, target, run.ItemsCollected, det.Verdict.Reason)
			default:
				report("%s %q: %d listings, %d sold, %d new, %d repriced\n",
					c.Platform, target, run.ItemsCollected,
					len(det.Changes.Sold), len(det.Changes.Added), len(det.Changes.Repriced))
				if images != nil {
					archiveImages(ctx, deps, images, det.Changes.Sold)
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// archiveImages saves the images of sold listings. The listings are gone
// from the marketplace, so their CDN images won't stay up for long; a failed
// download is logged and skipped, never fatal.
func archiveImages(ctx context.Context, deps *Dependencies, store saletrack.ImageStore, sold []saletrack.Listing) {
	for _, listing := range sold {
		if listing.ImageURL == "" || store.HasImage(&listing) {
			continue
		}

		data, err := deps.Fetcher.FetchImage(ctx, listing.ImageURL)
		if err != nil {
			deps.Logger.Warn("image archive failed",
				"platform", listing.Platform,
				"listing_id", listing.ListingID,
				"url", listing.ImageURL,
				"error", saletrack.ErrorMessage(err),
			)
			continue
		}

		path, err := store.SaveImage(ctx, &listing, data)
		if err != nil {
			deps.Logger.Warn("image archive failed",
				"platform", listing.Platform,
				"listing_id", listing.ListingID,
				"error", saletrack.ErrorMessage(err),
			)
			continue
		}

		deps.Logger.Info("archived sold listing image",
			"platform", listing.Platform,
			"listing_id", listing.ListingID,
			"path", path,
		)
	}
}

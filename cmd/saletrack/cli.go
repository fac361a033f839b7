package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Snapshots  saletrack.SnapshotService
	Platforms  saletrack.PlatformRegistry
	Resolver   saletrack.ChallengeResolver
	NewSession func() (saletrack.RenderSession, error)

	// Image archiving. Fetcher downloads listing images; NewImageStore
	// opens a store rooted at the directory given on the command line.
	Fetcher       saletrack.ImageFetcher
	NewImageStore func(dir string) saletrack.ImageStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl CrawlCmd `cmd:"" help:"Crawl marketplace targets and detect sales"`
	Sales SalesCmd `cmd:"" help:"List detected sales for a platform"`
	Ping  PingCmd  `cmd:"" help:"Check that the challenge resolver is reachable"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Platform string   `arg:"" help:"Platform name (chrono24, catawiki, vestiaire)"`
	Targets  []string `arg:"" help:"Search targets (model queries or seller IDs)"`

	MaxPages    int           `default:"0" help:"Page cap per target (0 = all advertised pages)"`
	PageDelay   time.Duration `default:"5s" help:"Pause between result pages"`
	Concurrency int           `short:"c" default:"2" help:"Concurrent target limit"`

	MinItems    int     `default:"100" help:"Coverage floor: minimum items for a valid run"`
	MinCoverage float64 `default:"0.1" help:"Coverage floor: minimum fraction of advertised pages"`
	MaxChange   float64 `default:"10.0" help:"Coverage ceiling: max item count change vs yesterday (percent)"`

	Images string `help:"Directory to archive sold-listing images in (empty = disabled)"`
}

// SalesCmd is the "sales" subcommand.
type SalesCmd struct {
	Platform string `arg:"" help:"Platform name"`
	Date     string `help:"Detection date (YYYY-MM-DD, default today)"`
}

// PingCmd is the "ping" subcommand.
type PingCmd struct{}

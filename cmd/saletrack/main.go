package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/saletrack"
	"github.com/fwojciec/saletrack/flaresolverr"
	"github.com/fwojciec/saletrack/fs"
	"github.com/fwojciec/saletrack/goquery"
	salehttp "github.com/fwojciec/saletrack/http"
	"github.com/fwojciec/saletrack/rod"
	saleslog "github.com/fwojciec/saletrack/slog"
	"github.com/fwojciec/saletrack/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// Optional .env file for local runs; environment variables win.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// FlareSolverr endpoint and per-call timeout.
	ResolverURL     string
	ResolverTimeout time.Duration

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults taken from the
// environment.
func NewMain() *Main {
	return &Main{
		DBPath:          defaultDBPath(),
		ResolverURL:     envOr("FLARESOLVERR_URL", "http://localhost:8191/v1"),
		ResolverTimeout: resolverTimeout(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel()}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("saletrack"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'saletrack --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SALETRACK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Snapshots = saleslog.NewLoggingSnapshotService(sqlite.NewSnapshotService(m.DB), logger)
	deps.Platforms = goquery.NewRegistry(
		goquery.NewChrono24("Japón", "Japan", "JP"),
		goquery.NewCatawiki(),
		goquery.NewVestiaire(),
	)
	deps.Resolver = saleslog.NewLoggingResolver(
		flaresolverr.NewClient(m.ResolverURL, flaresolverr.WithTimeout(m.ResolverTimeout)),
		logger,
	)

	// The browser and image fetcher are only needed for crawling.
	if cmd == "crawl" {
		fetcher := salehttp.NewImageFetcher()
		defer fetcher.Close()

		deps.Fetcher = fetcher
		deps.NewImageStore = func(dir string) saletrack.ImageStore {
			return fs.NewImageStore(dir)
		}

		manager, err := rod.NewManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer manager.Close()

		deps.NewSession = func() (saletrack.RenderSession, error) {
			session, err := manager.NewSession()
			if err != nil {
				return nil, err
			}
			return rod.NewLoggingSession(session, logger), nil
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("SALETRACK_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "saletrack.db"
	}
	dir := filepath.Join(home, ".saletrack")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "saletrack.db")
}

func resolverTimeout() time.Duration {
	if v := os.Getenv("FLARESOLVERR_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return flaresolverr.DefaultTimeout
}

func logLevel() slog.Level {
	if os.Getenv("SALETRACK_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

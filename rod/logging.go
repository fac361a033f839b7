package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
)

// Ensure LoggingSession implements saletrack.RenderSession.
var _ saletrack.RenderSession = (*LoggingSession)(nil)

// LoggingSession wraps a RenderSession with debug logging.
type LoggingSession struct {
	next   saletrack.RenderSession
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next saletrack.RenderSession, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Navigate logs the URL being loaded and delegates to the wrapped session.
func (s *LoggingSession) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Navigate(ctx, url)
}

// Click logs the selector being clicked and delegates to the wrapped session.
func (s *LoggingSession) Click(ctx context.Context, selector string) (clicked bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("click",
			"selector", selector,
			"clicked", clicked,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Click(ctx, selector)
}

// SetContent delegates to the wrapped session.
func (s *LoggingSession) SetContent(ctx context.Context, html string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("set content",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SetContent(ctx, html)
}

// HTML delegates to the wrapped session.
func (s *LoggingSession) HTML(ctx context.Context) (string, error) {
	return s.next.HTML(ctx)
}

// Count delegates to the wrapped session.
func (s *LoggingSession) Count(ctx context.Context, selector string) (int, error) {
	return s.next.Count(ctx, selector)
}

// SetCookies logs the number of cookies installed and delegates to the
// wrapped session.
func (s *LoggingSession) SetCookies(ctx context.Context, cookies []saletrack.Cookie) (err error) {
	defer func() {
		s.logger.Debug("set cookies", "count", len(cookies), "err", err)
	}()
	return s.next.SetCookies(ctx, cookies)
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	return s.next.Close()
}

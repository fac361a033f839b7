// Package slog provides logging decorators for saletrack services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/saletrack"
)

// Ensure LoggingResolver implements saletrack.ChallengeResolver.
var _ saletrack.ChallengeResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a ChallengeResolver with logging. Challenge
// resolutions are slow and rare enough that each one is worth a log line.
type LoggingResolver struct {
	next   saletrack.ChallengeResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next saletrack.ChallengeResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve logs the resolution attempt and delegates to the wrapped resolver.
func (r *LoggingResolver) Resolve(ctx context.Context, url string) (res *saletrack.Resolution, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "status", res.Status, "bytes", len(res.HTML), "cookies", len(res.Cookies))
		}
		r.logger.Info("challenge resolution", attrs...)
	}(time.Now())
	return r.next.Resolve(ctx, url)
}

// Ping delegates to the wrapped resolver, logging failures.
func (r *LoggingResolver) Ping(ctx context.Context) error {
	err := r.next.Ping(ctx)
	if err != nil {
		r.logger.Warn("challenge resolver ping failed", "err", err)
	}
	return err
}

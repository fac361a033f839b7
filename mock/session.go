// Package mock provides function-field mock implementations of the saletrack
// interfaces for testing.
package mock

import (
	"context"

	"github.com/fwojciec/saletrack"
)

var _ saletrack.RenderSession = (*RenderSession)(nil)

// RenderSession is a mock implementation of saletrack.RenderSession.
type RenderSession struct {
	NavigateFn   func(ctx context.Context, url string) error
	ClickFn      func(ctx context.Context, selector string) (bool, error)
	SetContentFn func(ctx context.Context, html string) error
	HTMLFn       func(ctx context.Context) (string, error)
	CountFn      func(ctx context.Context, selector string) (int, error)
	SetCookiesFn func(ctx context.Context, cookies []saletrack.Cookie) error
	CloseFn      func() error
}

func (s *RenderSession) Navigate(ctx context.Context, url string) error {
	return s.NavigateFn(ctx, url)
}

func (s *RenderSession) Click(ctx context.Context, selector string) (bool, error) {
	return s.ClickFn(ctx, selector)
}

func (s *RenderSession) SetContent(ctx context.Context, html string) error {
	return s.SetContentFn(ctx, html)
}

func (s *RenderSession) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

func (s *RenderSession) Count(ctx context.Context, selector string) (int, error) {
	return s.CountFn(ctx, selector)
}

func (s *RenderSession) SetCookies(ctx context.Context, cookies []saletrack.Cookie) error {
	return s.SetCookiesFn(ctx, cookies)
}

func (s *RenderSession) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

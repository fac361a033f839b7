// Package rod implements browser-backed page rendering using Chrome
// automation via go-rod.
package rod

import (
	"context"
	"fmt"

	"github.com/fwojciec/saletrack"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Session implements saletrack.RenderSession at compile time.
var _ saletrack.RenderSession = (*Session)(nil)

// Session renders marketplace pages in a single browser tab. A Session holds
// state across calls (cookies, the currently loaded document), so each crawl
// target should use its own Session. A Session is not safe for concurrent use.
type Session struct {
	browser *rod.Browser
	counted func()
	page    *rod.Page
}

// Navigate loads the URL and waits for the page load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	p, err := s.currentPage()
	if err != nil {
		return err
	}
	p = p.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return err
	}
	if err := p.WaitLoad(); err != nil {
		return err
	}

	if s.counted != nil {
		s.counted()
	}
	return nil
}

// Click clicks the first visible element matching the selector. It reports
// false without error when no such element exists, so callers can probe
// optional elements like consent overlays and pagination links.
func (s *Session) Click(ctx context.Context, selector string) (bool, error) {
	p, err := s.currentPage()
	if err != nil {
		return false, err
	}
	p = p.Context(ctx)

	has, el, err := p.Has(selector)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}

	visible, err := el.Visible()
	if err != nil || !visible {
		return false, nil
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	if err := p.WaitLoad(); err != nil {
		return true, err
	}
	return true, nil
}

// SetContent replaces the current document with the given HTML. Used to
// re-render content obtained outside the browser.
func (s *Session) SetContent(ctx context.Context, html string) error {
	p, err := s.currentPage()
	if err != nil {
		return err
	}
	return p.Context(ctx).SetDocumentContent(html)
}

// HTML returns the rendered HTML of the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	p, err := s.currentPage()
	if err != nil {
		return "", err
	}
	return p.Context(ctx).HTML()
}

// Count returns the number of elements matching the selector in the current
// document.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	p, err := s.currentPage()
	if err != nil {
		return 0, err
	}
	els, err := p.Context(ctx).Elements(selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// SetCookies installs cookies into the browser so subsequent navigations
// carry them.
func (s *Session) SetCookies(ctx context.Context, cookies []saletrack.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return s.browser.SetCookies(params)
}

// Close releases the browser tab. The underlying browser stays up for other
// sessions; the Manager owns its lifecycle.
func (s *Session) Close() error {
	if s.page == nil {
		return nil
	}
	page := s.page
	s.page = nil
	return page.Close()
}

// currentPage returns the session's tab, creating it on first use.
func (s *Session) currentPage() (*rod.Page, error) {
	if s.page != nil {
		return s.page, nil
	}
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	s.page = page
	return page, nil
}

package saletrack

import "context"

// Cookie is a browser cookie returned by the challenge resolver and replayed
// into a render session.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// RenderSession drives one controllable browser page. A session carries
// navigation state (cookies, DOM, pagination position) between calls, so
// pages within one crawl run must go through the same session in order.
// Sessions are not safe for concurrent use; each concurrent target owns its
// own session.
//
// Implementations may use browser automation to execute JavaScript-rendered
// content. The context controls timeout and cancellation on every call.
type RenderSession interface {
	// Navigate loads the URL in the session's page.
	Navigate(ctx context.Context, url string) error

	// Click clicks the first visible element matching the selector.
	// Returns false (without error) when no such element exists.
	Click(ctx context.Context, selector string) (bool, error)

	// SetContent replaces the page's document with the given HTML without
	// performing a navigation. Scripts in the HTML are not executed.
	SetContent(ctx context.Context, html string) error

	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)

	// Count returns the number of elements matching the selector.
	Count(ctx context.Context, selector string) (int, error)

	// SetCookies adds cookies to the session's browser context.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// Close releases the session's page resources.
	// Must be called when the session is no longer needed.
	Close() error
}

// Package http provides an HTTP-based implementation of saletrack.ImageFetcher
// for downloading listing images from marketplace CDNs, which serve static
// content and don't require JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/saletrack"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxImageBytes caps the size of a single downloaded image.
// Marketplace listing photos run well under 2 MB.
const DefaultMaxImageBytes = 10 << 20

// Ensure ImageFetcher implements saletrack.ImageFetcher at compile time.
var _ saletrack.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher downloads image content from URLs using HTTP requests.
type ImageFetcher struct {
	client  *http.Client
	timeout time.Duration
	maxSize int64
}

// Option configures an ImageFetcher.
type Option func(*ImageFetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *ImageFetcher) {
		f.timeout = d
	}
}

// WithMaxImageBytes sets the per-image download size cap.
func WithMaxImageBytes(n int64) Option {
	return func(f *ImageFetcher) {
		f.maxSize = n
	}
}

// NewImageFetcher creates a new HTTP-based ImageFetcher.
func NewImageFetcher(opts ...Option) *ImageFetcher {
	f := &ImageFetcher{
		timeout: DefaultFetchTimeout,
		maxSize: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// FetchImage downloads the image at the given URL.
func (f *ImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EINVALID, "invalid image URL %q: %s", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EUNAVAILABLE, "fetching image %q: %s", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, saletrack.Errorf(saletrack.EREJECTED, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, saletrack.Errorf(saletrack.EUNAVAILABLE, "reading image %q: %s", url, err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, saletrack.Errorf(saletrack.EREJECTED, "image %q exceeds %d bytes", url, f.maxSize)
	}

	return body, nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *ImageFetcher) Close() error {
	return nil
}

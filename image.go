package saletrack

import "context"

// ImageFetcher retrieves listing image content over plain HTTP. Listing
// images come from marketplace CDNs and need no JavaScript rendering, so
// fetching them bypasses the render session entirely.
type ImageFetcher interface {
	// FetchImage downloads the image at the given URL.
	FetchImage(ctx context.Context, url string) ([]byte, error)

	// Close releases the fetcher's resources.
	Close() error
}

// ImageStore archives listing images on disk. Sold listings disappear from
// the marketplace along with their CDN images, so the image is saved at
// detection time or not at all.
type ImageStore interface {
	// SaveImage persists the image for a listing and returns the path it
	// was written to.
	SaveImage(ctx context.Context, listing *Listing, data []byte) (string, error)

	// HasImage reports whether an image for the listing is already stored.
	HasImage(listing *Listing) bool
}

package mock

import (
	"context"

	"github.com/fwojciec/saletrack"
)

var _ saletrack.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of saletrack.ImageFetcher.
type ImageFetcher struct {
	FetchImageFn func(ctx context.Context, url string) ([]byte, error)
	CloseFn      func() error
}

func (f *ImageFetcher) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return f.FetchImageFn(ctx, url)
}

func (f *ImageFetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ saletrack.ImageStore = (*ImageStore)(nil)

// ImageStore is a mock implementation of saletrack.ImageStore.
// HasImage defaults to false.
type ImageStore struct {
	SaveImageFn func(ctx context.Context, listing *saletrack.Listing, data []byte) (string, error)
	HasImageFn  func(listing *saletrack.Listing) bool
}

func (s *ImageStore) SaveImage(ctx context.Context, listing *saletrack.Listing, data []byte) (string, error) {
	return s.SaveImageFn(ctx, listing, data)
}

func (s *ImageStore) HasImage(listing *saletrack.Listing) bool {
	if s.HasImageFn == nil {
		return false
	}
	return s.HasImageFn(listing)
}

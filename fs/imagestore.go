// Package fs provides file-based storage for listing images.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/saletrack"
)

// imageExtension derives the file extension from the image URL's path,
// falling back to .jpg, which is what marketplace CDNs serve by default.
func imageExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
		return ext
	}
	return ".jpg"
}

// Ensure ImageStore implements saletrack.ImageStore at compile time.
var _ saletrack.ImageStore = (*ImageStore)(nil)

// ImageStore writes listing images to a directory, one subdirectory per
// platform, named by listing ID. Listing IDs are unique per platform so the
// layout can never collide.
type ImageStore struct {
	baseDir string
}

// NewImageStore creates a new ImageStore rooted at the given base directory.
func NewImageStore(baseDir string) *ImageStore {
	return &ImageStore{baseDir: baseDir}
}

func (s *ImageStore) imagePath(listing *saletrack.Listing) string {
	return filepath.Join(s.baseDir, listing.Platform, listing.ListingID+imageExtension(listing.ImageURL))
}

// HasImage reports whether an image for the listing is already stored.
func (s *ImageStore) HasImage(listing *saletrack.Listing) bool {
	if listing.Platform == "" || listing.ListingID == "" {
		return false
	}
	_, err := os.Stat(s.imagePath(listing))
	return err == nil
}

// SaveImage writes the image to disk and returns the path it was written to.
// Writing goes through a temporary file so a crash mid-write never leaves a
// truncated image behind.
func (s *ImageStore) SaveImage(ctx context.Context, listing *saletrack.Listing, data []byte) (string, error) {
	if err := listing.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := s.imagePath(listing)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", saletrack.Errorf(saletrack.EINTERNAL, "creating image directory: %s", err)
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", saletrack.Errorf(saletrack.EINTERNAL, "writing image: %s", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return "", saletrack.Errorf(saletrack.EINTERNAL, "finalizing image: %s", err)
	}

	return fullPath, nil
}

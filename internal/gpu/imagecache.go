package gpu

import (
	"image"

	"github.com/gogpu/fpv/internal/cache"
)

// ImageCache holds decoded material images by path. Failed loads are not
// cached. It is safe for concurrent use; two goroutines loading the same
// uncached path may both decode it.
type ImageCache struct {
	images *cache.Cache[string, image.Image]
}

// NewImageCache returns a cache that keeps about softLimit images.
// Zero means unlimited.
func NewImageCache(softLimit int) *ImageCache {
	return &ImageCache{images: cache.New[string, image.Image](softLimit)}
}

// Load returns the image at path, decoding it on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.images.Get(path); ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	c.images.Set(path, img)
	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int { return c.images.Len() }

// Stats returns the hit and miss counts.
func (c *ImageCache) Stats() (hits, misses int) {
	st := c.images.Stats()
	return int(st.Hits), int(st.Misses)
}

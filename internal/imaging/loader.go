package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/disintegration/imaging"
)

// PageCache provides thread-safe caching of decoded grayscale pages.
//
// The cache stores *image.Gray values keyed by their file path. Once a page
// is loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. The MCP server uses it so that segmenting a page and then
// extracting its blocks decodes the scan only once.
//
// # Memory Management
//
// Cached pages remain in memory until explicitly removed via Evict() or
// Clear(). A 300 dpi letter scan is roughly 8 MB as 8-bit gray.
//
// # Example Usage
//
//	cache := imaging.NewPageCache()
//	gray, err := cache.Load("/scans/tx-2005-p0113.tif")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/scans/tx-2005-p0113.tif")
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]*image.Gray
}

// NewPageCache creates and initializes a new empty page cache.
func NewPageCache() *PageCache {
	return &PageCache{
		pages: make(map[string]*image.Gray),
	}
}

// Load retrieves a page from the cache or decodes it from disk if not cached.
//
// The returned image is shared with other callers and must be treated as
// read-only. Errors are those of LoadGray.
func (c *PageCache) Load(path string) (*image.Gray, error) {
	c.mu.RLock()
	if g, ok := c.pages[path]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	g, err := LoadGray(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages[path] = g
	c.mu.Unlock()

	return g, nil
}

// Len reports the number of cached pages.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// Clear removes all pages from the cache.
func (c *PageCache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]*image.Gray)
	c.mu.Unlock()
}

// Evict removes a specific page from the cache by its path.
func (c *PageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
}

// LoadGray decodes the image at path and converts it to 8-bit grayscale.
//
// Any format understood by github.com/disintegration/imaging is accepted
// (TIFF, PNG, JPEG, GIF, BMP). Colour scans are converted with the standard
// luminance weights of color.GrayModel.
func LoadGray(path string) (*image.Gray, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ToGray(img), nil
}

// ToGray returns img as an *image.Gray anchored at (0,0). A gray image that is
// already anchored is returned as is.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

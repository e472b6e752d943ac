package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache keeps decoded images keyed by the path they were loaded from.
//
// Repeated Load calls for one path return the same image.Image without
// touching the disk again. The server shares one cache across tool calls;
// the batch command shares one across its workers.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// A cache built with a positive limit holds at most that many images and
// drops the oldest entry when a new one arrives. An unbounded cache keeps
// everything until Evict or Clear is called.
//
// # Example Usage
//
//	cache := imaging.NewImageCache(16)
//	img, err := cache.Load("/path/to/cards.jpg")
//	if err != nil {
//	    return err
//	}
//	defer cache.Evict("/path/to/cards.jpg")
type ImageCache struct {
	mu     sync.Mutex
	limit  int
	images map[string]image.Image
	order  []string // oldest first
}

// NewImageCache returns an empty cache.
//
// Parameters:
//   - limit: Maximum number of images kept at once. Zero or less means
//     unbounded.
//
// The returned cache is ready for immediate use.
func NewImageCache(limit int) *ImageCache {
	return &ImageCache{
		limit:  limit,
		images: make(map[string]image.Image),
	}
}

// Load returns the image at path, decoding it on first use.
//
// Parameters:
//   - path: File path of the image. PNG, JPEG, GIF, BMP, TIFF and WebP are
//     supported.
//
// Returns:
//   - image.Image: The decoded image with JPEG EXIF orientation applied. The
//     concrete type depends on the format (e.g., *image.NRGBA, *image.Gray).
//   - error: Non-nil if the file cannot be opened or decoded.
//
// Entries are keyed by the exact path string, so a relative and an absolute
// path to one file are cached twice. When two goroutines decode the same path
// at once, both receive the image stored first.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the contents are not an image in a supported format
//
// Failed loads are not cached.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.Lock()
	img, ok := c.images[path]
	c.mu.Unlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	img, err = Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have decoded the same path meanwhile.
	if cached, ok := c.images[path]; ok {
		return cached, nil
	}
	c.images[path] = img
	c.order = append(c.order, path)
	if c.limit > 0 && len(c.order) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.images, oldest)
	}
	return img, nil
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Clear drops every cached image. Later Load calls decode from disk again.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.order = nil
	c.mu.Unlock()
}

// Evict drops the image cached under path.
//
// Parameters:
//   - path: The exact path string given to Load.
//
// Evicting a path that is not cached does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		return
	}
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ImageInfo describes an image file as the detector will see it.
//
// This is what the image_load tool reports before any detection runs.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format comes from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// ColorModel is the decoded pixel layout, e.g. "rgba", "ycbcr", "gray".
	ColorModel string `json:"color_model"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its metadata.
//
// Parameters:
//   - cache: Cache the decoded image is taken from or stored in.
//   - path: File path of the image.
//
// Returns:
//   - *ImageInfo: Size, format, color model and file size.
//   - error: Non-nil if the image cannot be loaded or the file cannot be
//     stat'ed.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        formatFromPath(path),
		ColorModel:    colorModelName(img),
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult is the pixel size of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions loads path through cache and reports its width and height.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}

func colorModelName(img image.Image) string {
	switch img.(type) {
	case *image.RGBA:
		return "rgba"
	case *image.NRGBA:
		return "nrgba"
	case *image.RGBA64, *image.NRGBA64:
		return "rgba64"
	case *image.YCbCr, *image.NYCbCrA:
		return "ycbcr"
	case *image.Gray:
		return "gray"
	case *image.Gray16:
		return "gray16"
	case *image.Paletted:
		return "paletted"
	case *image.CMYK:
		return "cmyk"
	}
	return "other"
}

// Decode reads an image from r, applying JPEG EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Save writes img to path.
//
// The output format is chosen from the file extension (.png, .jpg, .gif,
// .bmp, .tif). Parent directories must already exist.
//
// # Errors
//
//   - Returns error for an unsupported extension
//   - Returns error if the file cannot be created or written
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// EncodePNGBase64 encodes img as PNG and returns the standard base64 text,
// ready to embed in a JSON tool result.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CloneNRGBA returns a copy of img as an NRGBA image whose bounds start at
// (0, 0).
func CloneNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

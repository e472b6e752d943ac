package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeTestPNG writes a uniformly colored PNG named name into a temp dir and
// returns its path.
func writeTestPNG(t *testing.T, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(0)
	path := writeTestPNG(t, "red.png", 100, 60, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img1.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("dimensions: got %dx%d, want 100x60", b.Dx(), b.Dy())
	}

	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return the cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache(0)

	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("Load should fail for undecodable data")
	}

	if cache.Len() != 0 {
		t.Errorf("failed loads must not be cached, Len = %d", cache.Len())
	}
}

func TestImageCache_Limit(t *testing.T) {
	cache := NewImageCache(2)
	a := writeTestPNG(t, "a.png", 4, 4, color.White)
	b := writeTestPNG(t, "b.png", 4, 4, color.White)
	c := writeTestPNG(t, "c.png", 4, 4, color.White)

	first, _ := cache.Load(a)
	cache.Load(b)
	cache.Load(c)

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}

	// a was the oldest entry and must be decoded again.
	again, err := cache.Load(a)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again == first {
		t.Error("oldest image was not dropped")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache(0)
	a := writeTestPNG(t, "a.png", 4, 4, color.Black)
	b := writeTestPNG(t, "b.png", 4, 4, color.Black)
	cache.Load(a)
	cache.Load(b)

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("after Evict: Len = %d, want 1", cache.Len())
	}
	cache.Evict("/never/loaded.png")
	if cache.Len() != 1 {
		t.Errorf("evicting an unknown path changed Len to %d", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: Len = %d, want 0", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache(1)
	path := writeTestPNG(t, "gray.png", 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache(0)
	path := writeTestPNG(t, "info.png", 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	// An opaque RGBA source is written as 8-bit truecolor PNG.
	if info.ColorModel != "rgba" {
		t.Errorf("ColorModel: got %s, want rgba", info.ColorModel)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatFromExtension(t *testing.T) {
	cache := NewImageCache(0)

	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".jpeg", "jpeg"},
		{".gif", "gif"},
		{".bmp", "bmp"},
		{".tif", "tiff"},
		{".webp", "webp"},
		{".PNG", "png"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// The file is PNG whatever the extension says.
			path := writeTestPNG(t, "format"+tt.ext, 10, 10, color.White)

			info, err := LoadImageInfo(cache, path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("got %s, want %s", info.Format, tt.format)
			}
		})
	}
}

func TestColorModelName(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)
	tests := []struct {
		img  image.Image
		want string
	}{
		{image.NewRGBA(r), "rgba"},
		{image.NewNRGBA(r), "nrgba"},
		{image.NewNRGBA64(r), "rgba64"},
		{image.NewYCbCr(r, image.YCbCrSubsampleRatio420), "ycbcr"},
		{image.NewGray(r), "gray"},
		{image.NewGray16(r), "gray16"},
		{image.NewPaletted(r, color.Palette{color.Black}), "paletted"},
		{image.NewCMYK(r), "cmyk"},
		{image.NewAlpha(r), "other"},
	}
	for _, tt := range tests {
		if got := colorModelName(tt.img); got != tt.want {
			t.Errorf("%T: got %s, want %s", tt.img, got, tt.want)
		}
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache(0)
	path := writeTestPNG(t, "dims.png", 300, 200, color.RGBA{100, 100, 100, 255})

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("got %dx%d, want 300x200", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("GetDimensions should fail for a missing file")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 7))); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 7 {
		t.Errorf("dimensions: got %dx%d, want 12x7", img.Bounds().Dx(), img.Bounds().Dy())
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Decode should fail for invalid data")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(createInMemoryImage(20, 10, color.RGBA{0, 0, 255, 255}), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	img, err := NewImageCache(0).Load(path)
	if err != nil {
		t.Fatalf("Load of saved image failed: %v", err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r != 0 || g != 0 || b>>8 != 255 {
		t.Errorf("pixel: got (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}

	if err := Save(createInMemoryImage(2, 2, color.White), filepath.Join(t.TempDir(), "out.xyz")); err == nil {
		t.Error("Save should fail for an unknown extension")
	}
}

func TestEncodePNGBase64(t *testing.T) {
	encoded, err := EncodePNGBase64(createInMemoryImage(8, 8, color.White))
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width: got %d, want 8", img.Bounds().Dx())
	}
}

func TestCloneNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	src.Set(10, 20, color.RGBA{1, 2, 3, 255})

	dst := CloneNRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("bounds: got %v, want origin-anchored 4x3", dst.Bounds())
	}
	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{1, 2, 3, 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

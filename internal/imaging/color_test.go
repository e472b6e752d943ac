package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMeanColor(t *testing.T) {
	img := imaging.Clone(createInMemoryImage(20, 20, color.RGBA{255, 128, 64, 255}))

	s := MeanColor(img, image.Rect(5, 5, 15, 15))
	if s.Pixels != 100 {
		t.Errorf("Pixels: got %d, want 100", s.Pixels)
	}
	rgb := s.RGB()
	if rgb.R != 255 || rgb.G != 128 || rgb.B != 64 {
		t.Errorf("RGB: got (%d,%d,%d), want (255,128,64)", rgb.R, rgb.G, rgb.B)
	}
}

func TestMeanColor_Quadrants(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name string
		rect image.Rectangle
		want RGBColor
	}{
		{"red", image.Rect(0, 0, 50, 50), RGBColor{255, 0, 0}},
		{"green", image.Rect(50, 0, 100, 50), RGBColor{0, 255, 0}},
		{"blue", image.Rect(0, 50, 50, 100), RGBColor{0, 0, 255}},
		{"white", image.Rect(50, 50, 100, 100), RGBColor{255, 255, 255}},
		// Half red, half green.
		{"top strip", image.Rect(0, 0, 100, 10), RGBColor{128, 128, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanColor(img, tt.rect).RGB()
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeanColor_ClipsToBounds(t *testing.T) {
	img := createPatternImage(10, 10)

	s := MeanColor(img, image.Rect(-5, -5, 2, 2))
	if s.Pixels != 4 {
		t.Errorf("Pixels: got %d, want 4", s.Pixels)
	}

	empty := MeanColor(img, image.Rect(20, 20, 30, 30))
	if empty.Pixels != 0 {
		t.Errorf("Pixels outside image: got %d, want 0", empty.Pixels)
	}
}

func TestMeanColorMasked(t *testing.T) {
	img := createPatternImage(100, 100)

	mask := NewBinaryMask(100, 100)
	for y := 60; y < 70; y++ {
		for x := 10; x < 20; x++ {
			mask.Set(x, y, true)
		}
	}

	s := MeanColorMasked(img, mask)
	if s.Pixels != 100 {
		t.Errorf("Pixels: got %d, want 100", s.Pixels)
	}
	if got := s.RGB(); got != (RGBColor{0, 0, 255}) {
		t.Errorf("got %+v, want blue", got)
	}
}

func TestMeanColorMasked_EmptyMask(t *testing.T) {
	img := createPatternImage(10, 10)
	s := MeanColorMasked(img, NewBinaryMask(10, 10))
	if s.Pixels != 0 {
		t.Errorf("Pixels: got %d, want 0", s.Pixels)
	}
}

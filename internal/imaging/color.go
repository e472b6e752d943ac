package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// ColorSample is the mean color of a set of pixels.
type ColorSample struct {
	// Color is the mean color with components in [0, 1].
	Color colorful.Color

	// Pixels is the number of pixels averaged. Zero means nothing was sampled
	// and Color is black.
	Pixels int
}

// RGB returns the sample rounded to 8-bit components.
func (s ColorSample) RGB() RGBColor {
	r, g, b := s.Color.Clamped().RGB255()
	return RGBColor{R: r, G: g, B: b}
}

// MeanColor averages every pixel of img inside rect.
//
// Parameters:
//   - img: Source pixels. Alpha is ignored.
//   - rect: Region to average, in img's coordinate space.
//
// rect is clipped to the image bounds first; an empty intersection yields a
// sample with Pixels == 0.
func MeanColor(img *image.NRGBA, rect image.Rectangle) ColorSample {
	rect = rect.Intersect(img.Bounds())

	var sumR, sumG, sumB float64
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := img.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sumR += float64(img.Pix[off])
			sumG += float64(img.Pix[off+1])
			sumB += float64(img.Pix[off+2])
			off += 4
			n++
		}
	}
	return meanSample(sumR, sumG, sumB, n)
}

// MeanColorMasked averages every pixel of img whose mask pixel is on.
//
// The mask is anchored at img.Bounds().Min.
func MeanColorMasked(img *image.NRGBA, mask *BinaryMask) ColorSample {
	b := img.Bounds()

	var sumR, sumG, sumB float64
	n := 0
	for y := 0; y < mask.Height && y < b.Dy(); y++ {
		for x := 0; x < mask.Width && x < b.Dx(); x++ {
			if mask.Pix[y*mask.Width+x] != MaskOn {
				continue
			}
			off := img.PixOffset(x+b.Min.X, y+b.Min.Y)
			sumR += float64(img.Pix[off])
			sumG += float64(img.Pix[off+1])
			sumB += float64(img.Pix[off+2])
			n++
		}
	}
	return meanSample(sumR, sumG, sumB, n)
}

func meanSample(sumR, sumG, sumB float64, n int) ColorSample {
	if n == 0 {
		return ColorSample{}
	}
	d := float64(n) * 255.0
	return ColorSample{
		Color:  colorful.Color{R: sumR / d, G: sumG / d, B: sumB / d},
		Pixels: n,
	}
}

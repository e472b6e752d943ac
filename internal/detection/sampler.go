package detection

import (
	"image"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

// SamplingParams configures where a square's color is read.
type SamplingParams struct {
	// MarginFraction of the smaller bounding-box side is trimmed from every
	// side of the box before averaging, keeping outline pixels out of the mean.
	MarginFraction float64 `yaml:"margin_fraction" json:"margin_fraction"`

	// MinSampleSize is the largest trimmed-box width or height that is still
	// considered too small; such boxes fall back to the full contour mask.
	MinSampleSize int `yaml:"min_sample_size" json:"min_sample_size"`
}

// DefaultSamplingParams returns the stock sampling settings.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		MarginFraction: 0.2,
		MinSampleSize:  2,
	}
}

// SampleMethod names the region a color was averaged over.
type SampleMethod string

const (
	// SampleBox averages the trimmed axis-aligned bounding box of the polygon.
	SampleBox SampleMethod = "box"
	// SampleMask averages every pixel enclosed by the contour.
	SampleMask SampleMethod = "mask"
)

// SampleColor returns the representative color of a detected square.
//
// The bounding box of poly is shrunk inward by int(MarginFraction × its
// smaller side) on every side and averaged. When the shrunk box is
// MinSampleSize pixels or less in either direction, the mean is taken over
// the filled contour instead.
//
// Parameters:
//   - img: Source pixels, anchored at (0, 0) to match contour coordinates.
//   - c: The accepted contour, used for the mask fallback.
//   - poly: The simplified quadrilateral whose bounding box is sampled.
//   - p: Margin and minimum box size.
//
// Returns:
//   - imaging.ColorSample: The mean color and how many pixels went into it.
//   - SampleMethod: SampleBox or SampleMask, whichever region was averaged.
func SampleColor(img *image.NRGBA, c Contour, poly Polygon, p SamplingParams) (imaging.ColorSample, SampleMethod) {
	box := BoundingRect(poly)
	m := int(p.MarginFraction * float64(min(box.Dx(), box.Dy())))
	inner := image.Rectangle{
		Min: box.Min.Add(image.Pt(m, m)),
		Max: box.Max.Sub(image.Pt(m, m)),
	}

	if inner.Dx() > p.MinSampleSize && inner.Dy() > p.MinSampleSize {
		if s := imaging.MeanColor(img, inner); s.Pixels > 0 {
			return s, SampleBox
		}
	}

	b := img.Bounds()
	mask := imaging.PolygonMask(b.Dx(), b.Dy(), c)
	return imaging.MeanColorMasked(img, mask), SampleMask
}

package detection

import (
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

var (
	outlineColor = color.NRGBA{R: 64, G: 64, B: 64, A: 255}
	markerColor  = color.NRGBA{A: 255}
)

const (
	outlineThickness = 3
	markerRadius     = 4
)

// Annotate returns a copy of img with every detection drawn on it: the fitted
// rectangle outline, a dot at the centroid and the color name above the
// rectangle's top-left extent. Labels are kept 5 pixels inside the image.
// img itself is not modified.
func Annotate(img image.Image, set *DetectionSet) *image.NRGBA {
	canvas := imaging.CloneNRGBA(img)
	if set == nil {
		return canvas
	}

	for _, det := range set.Detections {
		corners := det.Rect.Corners()
		imaging.StrokePolygon(canvas, corners, outlineThickness, outlineColor)
		imaging.FillCircle(canvas, float64(det.CX), float64(det.CY), markerRadius, markerColor)

		minX, minY := math.Inf(1), math.Inf(1)
		for _, p := range corners {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
		}
		x := min(int(minX), canvas.Bounds().Dx()-5-imaging.LabelWidth(det.Color))
		x = max(5, x)
		y := max(15, int(minY)-8)
		imaging.DrawLabel(canvas, x, y, det.Color, markerColor)
	}
	return canvas
}

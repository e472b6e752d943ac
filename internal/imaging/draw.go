package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// StrokePolygon draws the outline of a convex polygon with the given line
// thickness, centered on the polygon edges.
//
// The outline is rasterized as the ring between the polygon offset outward
// and inward by thickness/2, with mitered corners.
func StrokePolygon(dst draw.Image, pts []r2.Vec, thickness float64, c color.Color) {
	if len(pts) < 2 || thickness <= 0 {
		return
	}
	outer := offsetPolygon(pts, thickness/2)
	inner := offsetPolygon(pts, -thickness/2)

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	origin := r2.Vec{X: float64(b.Min.X), Y: float64(b.Min.Y)}

	tracePath(z, outer, origin, false)
	// Opposite winding cancels coverage inside the inner path.
	tracePath(z, inner, origin, true)

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// FillCircle draws a filled disc of radius r centered at (cx, cy).
func FillCircle(dst draw.Image, cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	const segments = 32
	pts := make([]r2.Vec, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / segments
		pts[i] = r2.Vec{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	tracePath(z, pts, r2.Vec{X: float64(b.Min.X), Y: float64(b.Min.Y)}, false)
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// DrawLabel writes text with its baseline starting at (x, y) using the
// built-in 7x13 bitmap face.
func DrawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// LabelWidth returns the advance width of text in the label face, in pixels.
func LabelWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func tracePath(z *vector.Rasterizer, pts []r2.Vec, origin r2.Vec, reverse bool) {
	n := len(pts)
	at := func(i int) r2.Vec {
		if reverse {
			return r2.Sub(pts[n-1-i], origin)
		}
		return r2.Sub(pts[i], origin)
	}
	p := at(0)
	z.MoveTo(float32(p.X), float32(p.Y))
	for i := 1; i < n; i++ {
		p = at(i)
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// offsetPolygon moves every edge of a convex polygon outward by d (inward
// when d is negative) and returns the mitered vertices.
func offsetPolygon(pts []r2.Vec, d float64) []r2.Vec {
	n := len(pts)
	var area float64
	for i := 0; i < n; i++ {
		area += r2.Cross(pts[i], pts[(i+1)%n])
	}
	// Outward normal of edge a->b is (dy, -dx) for counter-clockwise polygons
	// in y-down image space (positive shoelace sum).
	sign := 1.0
	if area < 0 {
		sign = -1.0
	}

	normal := func(a, b r2.Vec) r2.Vec {
		e := r2.Sub(b, a)
		l := r2.Norm(e)
		if l == 0 {
			return r2.Vec{}
		}
		return r2.Scale(sign/l, r2.Vec{X: e.Y, Y: -e.X})
	}

	out := make([]r2.Vec, n)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		n1 := normal(prev, cur)
		n2 := normal(cur, next)
		denom := 1 + r2.Dot(n1, n2)
		if denom < 1e-6 {
			out[i] = r2.Add(cur, r2.Scale(d, n1))
			continue
		}
		out[i] = r2.Add(cur, r2.Scale(d/denom, r2.Add(n1, n2)))
	}
	return out
}

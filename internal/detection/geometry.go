package detection

import (
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon is a closed polygon given by its vertices in order.
type Polygon []image.Point

func vec(p image.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// signedArea returns the shoelace area of the closed point sequence.
// It is positive for clockwise traversal in image coordinates (y down).
func signedArea(pts []image.Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var s float64
	for i := 0; i < n; i++ {
		s += r2.Cross(vec(pts[i]), vec(pts[(i+1)%n]))
	}
	return s / 2
}

// ContourArea returns the area enclosed by a closed point sequence.
func ContourArea(pts []image.Point) float64 {
	return math.Abs(signedArea(pts))
}

// ArcLength returns the perimeter of a closed point sequence.
func ArcLength(pts []image.Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var l float64
	for i := 0; i < n; i++ {
		l += r2.Norm(r2.Sub(vec(pts[(i+1)%n]), vec(pts[i])))
	}
	return l
}

// ApproxPolygon simplifies a closed point sequence with the Douglas-Peucker
// algorithm. No discarded point lies farther than epsilon from the result.
//
// The curve is split at two mutually distant points, found by starting at the
// first point and hopping to the farthest point twice, and each half is
// simplified on its own.
func ApproxPolygon(pts []image.Point, epsilon float64) Polygon {
	n := len(pts)
	if n <= 2 {
		return append(Polygon(nil), pts...)
	}

	a := farthestFrom(pts, 0)
	b := farthestFrom(pts, a)
	if pts[a] == pts[b] {
		return Polygon{pts[0]}
	}

	// Walk the closed curve a -> b and b -> a.
	first := make([]image.Point, 0, n+1)
	for i := a; ; i = (i + 1) % n {
		first = append(first, pts[i])
		if i == b {
			break
		}
	}
	second := make([]image.Point, 0, n+1)
	for i := b; ; i = (i + 1) % n {
		second = append(second, pts[i])
		if i == a {
			break
		}
	}

	out := douglasPeucker(first, epsilon)
	out = out[:len(out)-1]
	rest := douglasPeucker(second, epsilon)
	out = append(out, rest[:len(rest)-1]...)
	return out
}

func farthestFrom(pts []image.Point, i int) int {
	best, bestDist := i, -1.0
	o := vec(pts[i])
	for j, p := range pts {
		d := r2.Norm2(r2.Sub(vec(p), o))
		if d > bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// douglasPeucker simplifies an open polyline, keeping both endpoints.
func douglasPeucker(pts []image.Point, epsilon float64) Polygon {
	n := len(pts)
	if n <= 2 {
		return append(Polygon(nil), pts...)
	}

	idx, maxDist := 0, -1.0
	for i := 1; i < n-1; i++ {
		d := segmentDistance(vec(pts[i]), vec(pts[0]), vec(pts[n-1]))
		if d > maxDist {
			idx, maxDist = i, d
		}
	}

	if maxDist <= epsilon {
		return Polygon{pts[0], pts[n-1]}
	}

	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance returns the distance from p to the line through a and b,
// or to a when a and b coincide.
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l := r2.Norm(ab)
	if l == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	return math.Abs(r2.Cross(ab, r2.Sub(p, a))) / l
}

// IsConvex reports whether the polygon turns the same way at every vertex.
// Collinear vertices are ignored; a polygon with no turn at all is not convex.
func IsConvex(poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		a, b, c := vec(poly[i]), vec(poly[(i+1)%n]), vec(poly[(i+2)%n])
		cross := r2.Cross(r2.Sub(b, a), r2.Sub(c, b))
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// Centroid returns the center of mass of the region enclosed by a closed
// point sequence, computed from its spatial moments. A sequence enclosing no
// area fails with ErrDegenerateContour.
func Centroid(pts []image.Point) (r2.Vec, error) {
	n := len(pts)
	var m00, m10, m01 float64
	for i := 0; i < n; i++ {
		p, q := vec(pts[i]), vec(pts[(i+1)%n])
		c := r2.Cross(p, q)
		m00 += c
		m10 += (p.X + q.X) * c
		m01 += (p.Y + q.Y) * c
	}
	m00 /= 2
	if m00 == 0 {
		return r2.Vec{}, ErrDegenerateContour
	}
	return r2.Vec{X: m10 / (6 * m00), Y: m01 / (6 * m00)}, nil
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// pixel of pts. Max is exclusive, so a single point yields a 1x1 rectangle.
func BoundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// ConvexHull returns the convex hull of pts using Andrew's monotone chain.
// Duplicate and collinear points are dropped.
func ConvexHull(pts []image.Point) []r2.Vec {
	if len(pts) == 0 {
		return nil
	}
	sorted := make([]image.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	uniq := sorted[:1]
	for _, p := range sorted[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		hull := make([]r2.Vec, len(uniq))
		for i, p := range uniq {
			hull[i] = vec(p)
		}
		return hull
	}

	turn := func(o, a, b r2.Vec) float64 {
		return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
	}

	hull := make([]r2.Vec, 0, 2*len(uniq))
	for _, p := range uniq {
		v := vec(p)
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		v := vec(uniq[i])
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	return hull[:len(hull)-1]
}

// RotatedRect is a rectangle with arbitrary orientation.
type RotatedRect struct {
	Center r2.Vec

	// Width is the longer side, Height the shorter one.
	Width  float64
	Height float64

	// Angle is the direction of the long side in degrees, in [-90, 90).
	// Angles grow clockwise on screen since y points down.
	Angle float64
}

// Corners returns the four corners of the rectangle in drawing order.
func (r RotatedRect) Corners() []r2.Vec {
	rad := r.Angle * math.Pi / 180
	u := r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
	v := r2.Vec{X: -u.Y, Y: u.X}
	hu := r2.Scale(r.Width/2, u)
	hv := r2.Scale(r.Height/2, v)
	return []r2.Vec{
		r2.Sub(r2.Sub(r.Center, hu), hv),
		r2.Sub(r2.Add(r.Center, hu), hv),
		r2.Add(r2.Add(r.Center, hu), hv),
		r2.Add(r2.Sub(r.Center, hu), hv),
	}
}

// MinAreaRect returns the minimum-area rectangle enclosing pts.
//
// One side of the optimal rectangle is collinear with a convex hull edge, so
// every hull edge is tried as a base; the first strictly smallest area wins.
func MinAreaRect(pts []image.Point) RotatedRect {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	var bestDir r2.Vec

	for i := range hull {
		e := r2.Sub(hull[(i+1)%len(hull)], hull[i])
		l := r2.Norm(e)
		if l == 0 {
			continue
		}
		u := r2.Scale(1/l, e)
		v := r2.Vec{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu, pv := r2.Dot(p, u), r2.Dot(p, v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		w, h := maxU-minU, maxV-minV
		if area := w * h; area < bestArea {
			bestArea = area
			center := r2.Add(r2.Scale((minU+maxU)/2, u), r2.Scale((minV+maxV)/2, v))
			dir := u
			if w < h {
				w, h = h, w
				dir = v
			}
			best = RotatedRect{Center: center, Width: w, Height: h}
			bestDir = dir
		}
	}

	best.Angle = normalizeAngle(math.Atan2(bestDir.Y, bestDir.X) * 180 / math.Pi)
	return best
}

// normalizeAngle folds an axis direction in degrees into [-90, 90).
func normalizeAngle(a float64) float64 {
	for a >= 90 {
		a -= 180
	}
	for a < -90 {
		a += 180
	}
	return a
}

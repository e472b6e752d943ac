package detection

import (
	"image"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

// Contour is the closed, ordered boundary of one connected region. Points are
// pixel coordinates; the last point connects back to the first.
type Contour []image.Point

// 8-neighborhood in clockwise order (y grows downward): E, SE, S, SW, W, NW, N, NE.
var (
	neighborDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	neighborDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// FindExternalContours traces the outer boundary of every outermost
// foreground region in mask.
//
// Foreground pixels are 8-connected and background pixels 4-connected.
// A region is outermost when it touches the image border or the background
// that is reachable from the border; regions sitting inside a hole of another
// region are not reported.
//
// Contours are returned in raster order of their first pixel. An all-zero
// mask yields an empty slice.
func FindExternalContours(mask *imaging.BinaryMask) []Contour {
	w, h := mask.Width, mask.Height
	contours := make([]Contour, 0)
	if w == 0 || h == 0 {
		return contours
	}

	outside := outerBackground(mask)
	labels := make([]int, w*h)
	label := 0
	stack := make([]image.Point, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask.On(x, y) || labels[y*w+x] != 0 {
				continue
			}

			label++
			external := false
			labels[y*w+x] = label
			stack = append(stack[:0], image.Pt(x, y))

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if !external && touchesOutside(outside, w, h, p) {
					external = true
				}

				for i := 0; i < 8; i++ {
					nx, ny := p.X+neighborDX[i], p.Y+neighborDY[i]
					if !mask.On(nx, ny) || labels[ny*w+nx] != 0 {
						continue
					}
					labels[ny*w+nx] = label
					stack = append(stack, image.Pt(nx, ny))
				}
			}

			if external {
				contours = append(contours, traceBoundary(labels, w, h, label, image.Pt(x, y)))
			}
		}
	}
	return contours
}

// outerBackground marks every background pixel 4-connected to the image border.
func outerBackground(mask *imaging.BinaryMask) []bool {
	w, h := mask.Width, mask.Height
	outside := make([]bool, w*h)
	stack := make([]image.Point, 0, 2*(w+h))

	seed := func(x, y int) {
		if !mask.On(x, y) && !outside[y*w+x] {
			outside[y*w+x] = true
			stack = append(stack, image.Pt(x, y))
		}
	}
	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 0; y < h; y++ {
		seed(0, y)
		seed(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !mask.In(nx, ny) {
				continue
			}
			seed(nx, ny)
		}
	}
	return outside
}

// touchesOutside reports whether p lies on the image border or is 4-adjacent
// to outer background.
func touchesOutside(outside []bool, w, h int, p image.Point) bool {
	if p.X == 0 || p.Y == 0 || p.X == w-1 || p.Y == h-1 {
		return true
	}
	return outside[p.Y*w+p.X-1] || outside[p.Y*w+p.X+1] ||
		outside[(p.Y-1)*w+p.X] || outside[(p.Y+1)*w+p.X]
}

// traceBoundary walks the outer boundary of the labeled region clockwise
// using Moore-neighbor tracing. start must be the region's first pixel in
// raster order, which guarantees its west neighbor is background.
func traceBoundary(labels []int, w, h, label int, start image.Point) Contour {
	inRegion := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == label
	}

	pts := Contour{start}
	cur := start
	back := image.Pt(start.X-1, start.Y)
	var first image.Point
	maxSteps := 4*w*h + 8

	for step := 0; step < maxSteps; step++ {
		next, nextBack, ok := nextBoundaryPixel(inRegion, cur, back)
		if !ok {
			// Isolated pixel.
			return pts
		}
		if step == 0 {
			first = next
		} else if cur == start && next == first {
			// Jacob's criterion: leaving the start pixel the same way again.
			break
		}
		cur, back = next, nextBack
		if cur != start || step == 0 {
			pts = append(pts, cur)
		}
	}

	if len(pts) > 1 && pts[len(pts)-1] == start {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// nextBoundaryPixel sweeps the 8-neighborhood of cur clockwise, starting just
// after back, and returns the first region pixel together with the background
// pixel examined immediately before it.
func nextBoundaryPixel(inRegion func(x, y int) bool, cur, back image.Point) (image.Point, image.Point, bool) {
	d := directionIndex(back.X-cur.X, back.Y-cur.Y)
	prev := back
	for k := 1; k <= 8; k++ {
		i := (d + k) % 8
		t := image.Pt(cur.X+neighborDX[i], cur.Y+neighborDY[i])
		if inRegion(t.X, t.Y) {
			return t, prev, true
		}
		prev = t
	}
	return image.Point{}, image.Point{}, false
}

func directionIndex(dx, dy int) int {
	for i := 0; i < 8; i++ {
		if neighborDX[i] == dx && neighborDY[i] == dy {
			return i
		}
	}
	return 0
}

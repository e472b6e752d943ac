package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Mask pixel values.
const (
	MaskOff uint8 = 0
	MaskOn  uint8 = 255
)

// BinaryMask is a single-channel image whose pixels are either MaskOff or MaskOn.
//
// Pixels are stored row-major with no padding: the pixel at (x, y) lives at
// Pix[y*Width+x]. The mask always has its origin at (0, 0).
type BinaryMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBinaryMask returns an all-off mask of the given size.
func NewBinaryMask(width, height int) *BinaryMask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &BinaryMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// In reports whether (x, y) lies inside the mask.
func (m *BinaryMask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// On reports whether the pixel at (x, y) is set. Out-of-range pixels are off.
func (m *BinaryMask) On(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x] == MaskOn
}

// Set turns the pixel at (x, y) on or off. Out-of-range writes are ignored.
func (m *BinaryMask) Set(x, y int, on bool) {
	if !m.In(x, y) {
		return
	}
	if on {
		m.Pix[y*m.Width+x] = MaskOn
	} else {
		m.Pix[y*m.Width+x] = MaskOff
	}
}

// Count returns the number of pixels that are on.
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == MaskOn {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *BinaryMask) Clone() *BinaryMask {
	c := &BinaryMask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Gray converts the mask to an *image.Gray for encoding or display.
func (m *BinaryMask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g.SetGray(x, y, color.Gray{Y: m.Pix[y*m.Width+x]})
		}
	}
	return g
}

// Dilate grows the on-region with a size×size square structuring element.
// Pixels outside the mask never contribute.
func (m *BinaryMask) Dilate(size int) *BinaryMask {
	return m.morph(size, true)
}

// Erode shrinks the on-region with a size×size square structuring element.
// Pixels outside the mask are ignored rather than treated as off, so shapes
// touching the border are not eaten away from outside.
func (m *BinaryMask) Erode(size int) *BinaryMask {
	return m.morph(size, false)
}

// Close performs a morphological closing (dilate then erode) which bridges
// gaps narrower than the structuring element.
func (m *BinaryMask) Close(size int) *BinaryMask {
	return m.Dilate(size).Erode(size)
}

// morph applies a square max (dilate) or min (erode) filter. The square
// element is separable, so a horizontal pass is followed by a vertical one.
func (m *BinaryMask) morph(size int, dilate bool) *BinaryMask {
	if size <= 1 || m.Width == 0 || m.Height == 0 {
		return m.Clone()
	}
	before := (size - 1) / 2
	after := size - 1 - before

	pick := func(acc bool, on bool) bool {
		if dilate {
			return acc || on
		}
		return acc && on
	}

	horiz := NewBinaryMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			acc := !dilate
			for k := x - before; k <= x+after; k++ {
				if k < 0 || k >= m.Width {
					continue
				}
				acc = pick(acc, m.Pix[y*m.Width+k] == MaskOn)
			}
			horiz.Set(x, y, acc)
		}
	}

	out := NewBinaryMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			acc := !dilate
			for k := y - before; k <= y+after; k++ {
				if k < 0 || k >= m.Height {
					continue
				}
				acc = pick(acc, horiz.Pix[k*m.Width+x] == MaskOn)
			}
			out.Set(x, y, acc)
		}
	}
	return out
}

// PolygonMask rasterizes a closed polygon given in pixel coordinates into a
// width×height mask. A pixel is on when its center lies inside the polygon
// (even-odd rule) or when it lies on the polygon's outline.
func PolygonMask(width, height int, pts []image.Point) *BinaryMask {
	m := NewBinaryMask(width, height)
	if len(pts) == 0 {
		return m
	}

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	minY = clamp(minY, 0, height-1)
	maxY = clamp(maxY, 0, height-1)

	n := len(pts)
	xs := make([]float64, 0, 8)
	for y := minY; y <= maxY; y++ {
		fy := float64(y)
		xs = xs[:0]
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			ay, by := float64(a.Y), float64(b.Y)
			// Half-open rule so a vertex shared by two edges is counted once.
			if (ay <= fy && by > fy) || (by <= fy && ay > fy) {
				t := (fy - ay) / (by - ay)
				xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i]))
			x1 := int(math.Floor(xs[i+1]))
			for x := x0; x <= x1; x++ {
				m.Set(x, y, true)
			}
		}
	}

	for i := 0; i < n; i++ {
		m.line(pts[i], pts[(i+1)%n])
	}
	return m
}

// line sets every pixel on the Bresenham segment from a to b.
func (m *BinaryMask) line(a, b image.Point) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		m.Set(x, y, true)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}


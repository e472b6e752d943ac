package imaging

import (
	"image"
	"testing"
)

func TestNewBinaryMask(t *testing.T) {
	m := NewBinaryMask(7, 3)
	if len(m.Pix) != 21 {
		t.Fatalf("len(Pix): got %d, want 21", len(m.Pix))
	}
	if m.Count() != 0 {
		t.Error("new mask should be empty")
	}

	neg := NewBinaryMask(-1, 5)
	if neg.Width != 0 || len(neg.Pix) != 0 {
		t.Error("negative width should yield an empty mask")
	}
}

func TestBinaryMask_SetOn(t *testing.T) {
	m := NewBinaryMask(5, 5)
	m.Set(2, 3, true)
	m.Set(-1, 0, true) // ignored
	m.Set(5, 5, true)  // ignored

	if !m.On(2, 3) {
		t.Error("(2,3) should be on")
	}
	if m.On(-1, 0) || m.On(5, 5) {
		t.Error("out-of-range pixels should be off")
	}
	if m.Count() != 1 {
		t.Errorf("Count: got %d, want 1", m.Count())
	}

	m.Set(2, 3, false)
	if m.On(2, 3) {
		t.Error("(2,3) should be off after clearing")
	}
}

func TestBinaryMask_Dilate(t *testing.T) {
	m := NewBinaryMask(9, 9)
	m.Set(4, 4, true)

	d := m.Dilate(3)
	if d.Count() != 9 {
		t.Errorf("3x3 dilation of a point: got %d pixels, want 9", d.Count())
	}
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			if !d.On(x, y) {
				t.Errorf("(%d,%d) should be on", x, y)
			}
		}
	}
	// Input untouched.
	if m.Count() != 1 {
		t.Error("Dilate modified its receiver")
	}
}

func TestBinaryMask_Erode(t *testing.T) {
	m := NewBinaryMask(9, 9)
	for y := 2; y <= 6; y++ {
		for x := 2; x <= 6; x++ {
			m.Set(x, y, true)
		}
	}

	e := m.Erode(3)
	if e.Count() != 9 {
		t.Errorf("3x3 erosion of 5x5 block: got %d pixels, want 9", e.Count())
	}
}

func TestBinaryMask_ErodeKeepsBorderShapes(t *testing.T) {
	m := NewBinaryMask(4, 4)
	for i := range m.Pix {
		m.Pix[i] = MaskOn
	}
	if got := m.Erode(3).Count(); got != 16 {
		t.Errorf("full mask should survive erosion, got %d pixels", got)
	}
}

func TestBinaryMask_CloseBridgesGap(t *testing.T) {
	m := NewBinaryMask(30, 9)
	// Horizontal line with a 2-pixel gap at x=12,13.
	for x := 5; x < 25; x++ {
		if x == 12 || x == 13 {
			continue
		}
		m.Set(x, 4, true)
	}

	c := m.Close(5)
	for x := 5; x < 25; x++ {
		if !c.On(x, 4) {
			t.Errorf("(%d,4) should be on after closing", x)
		}
	}
	// Closing never extends the line past its ends.
	if c.On(4, 4) || c.On(25, 4) {
		t.Error("closing grew the line beyond its ends")
	}
}

func TestBinaryMask_MorphNoop(t *testing.T) {
	m := NewBinaryMask(3, 3)
	m.Set(1, 1, true)
	if m.Dilate(1).Count() != 1 {
		t.Error("size 1 should be a no-op")
	}
}

func TestBinaryMask_Gray(t *testing.T) {
	m := NewBinaryMask(3, 2)
	m.Set(1, 1, true)
	g := m.Gray()
	if g.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds: got %v", g.Bounds())
	}
	if g.GrayAt(1, 1).Y != 255 || g.GrayAt(0, 0).Y != 0 {
		t.Error("gray values do not mirror the mask")
	}
}

func TestPolygonMask_Square(t *testing.T) {
	pts := []image.Point{{2, 2}, {7, 2}, {7, 7}, {2, 7}}
	m := PolygonMask(10, 10, pts)

	if got := m.Count(); got != 36 {
		t.Errorf("Count: got %d, want 36", got)
	}
	if !m.On(2, 2) || !m.On(7, 7) || !m.On(4, 5) {
		t.Error("interior and corners should be on")
	}
	if m.On(1, 4) || m.On(8, 4) {
		t.Error("pixels outside the square should be off")
	}
}

func TestPolygonMask_Diamond(t *testing.T) {
	pts := []image.Point{{5, 0}, {10, 5}, {5, 10}, {0, 5}}
	m := PolygonMask(11, 11, pts)

	if !m.On(5, 5) {
		t.Error("center should be on")
	}
	if m.On(0, 0) || m.On(10, 10) {
		t.Error("corners of the bounding box lie outside the diamond")
	}
}

func TestPolygonMask_Clipped(t *testing.T) {
	pts := []image.Point{{-5, -5}, {4, -5}, {4, 4}, {-5, 4}}
	m := PolygonMask(10, 10, pts)
	if got := m.Count(); got != 25 {
		t.Errorf("Count: got %d, want 25", got)
	}
}

func TestPolygonMask_Empty(t *testing.T) {
	if PolygonMask(5, 5, nil).Count() != 0 {
		t.Error("empty polygon should produce an empty mask")
	}
}

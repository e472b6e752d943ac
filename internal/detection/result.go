package detection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Detection is one classified square.
type Detection struct {
	// CX and CY are the centroid of the square's contour, truncated to pixels.
	CX int `json:"cx"`
	CY int `json:"cy"`

	// SizePx is the mean of the fitted rectangle's sides, truncated.
	SizePx int `json:"size_px"`

	// AngleDeg is the long-axis direction of the fitted rectangle, rounded
	// to 0.1 degree, in [-90, 90).
	AngleDeg float64 `json:"angle_deg"`

	// Color is the name of the nearest palette entry.
	Color string `json:"color"`

	// Rect is the fitted rectangle, kept for drawing.
	Rect RotatedRect `json:"-"`
}

// DetectionSet is the result of running the detector on one image.
type DetectionSet struct {
	Filename    string      `json:"filename"`
	Detections  []Detection `json:"detections"`
	ColorCounts ColorCounts `json:"color_counts"`
}

// ColorCounts tallies detections per palette color. Every palette name is
// present, and names keep palette order when marshaled.
type ColorCounts struct {
	names  []string
	counts map[string]int
}

// NewColorCounts returns counts for names, all zero.
func NewColorCounts(names []string) ColorCounts {
	c := ColorCounts{
		names:  make([]string, 0, len(names)),
		counts: make(map[string]int, len(names)),
	}
	for _, n := range names {
		c.add(n, 0)
	}
	return c
}

func (c *ColorCounts) add(name string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[name]; !ok {
		c.names = append(c.names, name)
	}
	c.counts[name] += n
}

// Inc adds one to the count for name.
func (c *ColorCounts) Inc(name string) {
	c.add(name, 1)
}

// Get returns the count for name, zero when absent.
func (c ColorCounts) Get(name string) int {
	return c.counts[name]
}

// Names returns the color names in order.
func (c ColorCounts) Names() []string {
	return append([]string(nil), c.names...)
}

// Total returns the sum over all colors.
func (c ColorCounts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Map returns a copy of the counts.
func (c ColorCounts) Map() map[string]int {
	m := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		m[k] = v
	}
	return m
}

// MarshalJSON writes the counts as an object with keys in palette order.
func (c ColorCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", c.counts[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of counts, keeping the key order.
func (c *ColorCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("color counts: expected object, got %v", tok)
	}

	*c = ColorCounts{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("color counts: expected key, got %v", tok)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("color counts: %s: %w", name, err)
		}
		if n < 0 {
			return fmt.Errorf("color counts: %s: negative count %d", name, n)
		}
		c.add(name, n)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Encode writes the set as indented JSON.
func (s *DetectionSet) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteSpec is the configuration form of one palette color.
type PaletteSpec struct {
	Name string `yaml:"name" json:"name"`
	Hex  string `yaml:"hex" json:"hex"`
}

// DefaultPaletteSpecs returns the four reference colors red, green, blue and
// yellow.
func DefaultPaletteSpecs() []PaletteSpec {
	return []PaletteSpec{
		{Name: "red", Hex: "#FF0000"},
		{Name: "green", Hex: "#00FF00"},
		{Name: "blue", Hex: "#0000FF"},
		{Name: "yellow", Hex: "#FFFF00"},
	}
}

// PaletteEntry is a named reference color.
type PaletteEntry struct {
	Name  string
	Color colorful.Color
}

// Palette is an ordered, immutable list of reference colors. The order
// decides ties during classification and the key order of color counts.
type Palette struct {
	entries []PaletteEntry
}

// NewPalette parses specs into a palette. Names must be unique and non-empty,
// and every hex value must be a #RRGGBB color.
func NewPalette(specs []PaletteSpec) (*Palette, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyPalette
	}

	seen := make(map[string]bool, len(specs))
	entries := make([]PaletteEntry, 0, len(specs))
	for i, s := range specs {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("palette entry %d: missing name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("palette entry %d: duplicate name %q", i, name)
		}
		seen[name] = true

		c, err := colorful.Hex(s.Hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", name, err)
		}
		entries = append(entries, PaletteEntry{Name: name, Color: c})
	}
	return &Palette{entries: entries}, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the palette entries in order.
func (p *Palette) Entries() []PaletteEntry {
	out := make([]PaletteEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Names returns the entry names in palette order.
func (p *Palette) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.Name
	}
	return names
}

// Classify returns the name of the palette entry nearest to c.
//
// Parameters:
//   - c: The sampled color. Components outside [0, 1] are clamped first.
//
// Returns:
//   - string: Name of the nearest entry. On a tie the entry that comes first
//     in the palette wins.
//   - float64: Squared Euclidean distance to that entry in 0-255 RGB.
//
// A palette built by NewPalette is never empty, so Classify always has an
// answer.
func (p *Palette) Classify(c colorful.Color) (string, float64) {
	c = c.Clamped()
	best, bestDist := "", math.Inf(1)
	for _, e := range p.entries {
		dr := 255 * (c.R - e.Color.R)
		dg := 255 * (c.G - e.Color.G)
		db := 255 * (c.B - e.Color.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = e.Name, d
		}
	}
	return best, bestDist
}

package detection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

// Config holds every tunable of the detection pipeline.
//
// A Config is plain data; NewDetector validates it and takes a private copy,
// so changing a Config after construction never affects a running Detector.
//
// # YAML Format
//
//	edge:
//	  low_threshold: 20
//	  high_threshold: 50
//	  close_kernel: 5
//	shape:
//	  min_area: 200
//	  epsilon_fraction: 0.02
//	sampling:
//	  margin_fraction: 0.2
//	  min_sample_size: 2
//	palette:
//	  - {name: red, hex: "#FF0000"}
//	  - {name: green, hex: "#00FF00"}
//
// Sections left out of a file keep their default values. A palette given in
// the file replaces the default palette entirely.
type Config struct {
	Edge     imaging.EdgeParams `yaml:"edge" json:"edge"`
	Shape    ShapeParams        `yaml:"shape" json:"shape"`
	Sampling SamplingParams     `yaml:"sampling" json:"sampling"`
	Palette  []PaletteSpec      `yaml:"palette" json:"palette"`
}

// DefaultConfig returns the stock pipeline settings with the red, green,
// blue and yellow palette.
func DefaultConfig() Config {
	return Config{
		Edge:     imaging.DefaultEdgeParams(),
		Shape:    DefaultShapeParams(),
		Sampling: DefaultSamplingParams(),
		Palette:  DefaultPaletteSpecs(),
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig and validates
// the result. Keys left out of the file keep their default values.
//
// # Errors
//
//   - Returns error if the file cannot be read
//   - Returns error if the YAML is malformed or names an unknown key
//   - Returns ErrEmptyPalette or ErrInvalidConfig (wrapped) for settings that
//     fail Validate
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected. Empty input yields the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	e := c.Edge
	switch {
	case e.LowThreshold < 0:
		return fmt.Errorf("%w: negative low threshold %d", ErrInvalidConfig, e.LowThreshold)
	case e.LowThreshold > e.HighThreshold:
		return fmt.Errorf("%w: low threshold %d above high threshold %d", ErrInvalidConfig, e.LowThreshold, e.HighThreshold)
	case e.CloseKernel < 0:
		return fmt.Errorf("%w: negative close kernel %d", ErrInvalidConfig, e.CloseKernel)
	}

	s := c.Shape
	switch {
	case s.MinArea < 0:
		return fmt.Errorf("%w: negative min area %g", ErrInvalidConfig, s.MinArea)
	case s.EpsilonFraction <= 0 || s.EpsilonFraction >= 1:
		return fmt.Errorf("%w: epsilon fraction %g not in (0, 1)", ErrInvalidConfig, s.EpsilonFraction)
	}

	m := c.Sampling
	switch {
	case m.MarginFraction < 0 || m.MarginFraction > 0.5:
		return fmt.Errorf("%w: margin fraction %g not in [0, 0.5]", ErrInvalidConfig, m.MarginFraction)
	case m.MinSampleSize < 0:
		return fmt.Errorf("%w: negative min sample size %d", ErrInvalidConfig, m.MinSampleSize)
	}

	if _, err := NewPalette(c.Palette); err != nil {
		if errors.Is(err, ErrEmptyPalette) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// clone returns a deep copy of c.
func (c Config) clone() Config {
	c.Palette = append([]PaletteSpec(nil), c.Palette...)
	return c
}

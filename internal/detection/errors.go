package detection

import (
	"errors"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

var (
	// ErrInvalidImage is returned for nil images and images without pixels.
	ErrInvalidImage = imaging.ErrInvalidImage

	// ErrDegenerateContour is returned when a contour encloses no area, so no
	// centroid exists.
	ErrDegenerateContour = errors.New("degenerate contour")

	// ErrEmptyPalette is returned when a palette has no entries.
	ErrEmptyPalette = errors.New("empty palette")

	// ErrInvalidConfig is returned by Config.Validate for out-of-range settings.
	ErrInvalidConfig = errors.New("invalid config")
)

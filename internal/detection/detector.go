package detection

import (
	"image"
	"math"

	"github.com/rs/zerolog"

	"github.com/ironsheep/colorsquares/internal/imaging"
)

// Detector finds colored squares in images.
//
// A Detector is immutable once built and safe for concurrent use; each Detect
// call works on its own buffers.
type Detector struct {
	cfg     Config
	palette *Palette
	log     zerolog.Logger
}

// Option customizes a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for per-image summaries and rejected
// contours, both at debug level. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) {
		d.log = l
	}
}

// NewDetector validates cfg and builds a Detector from a private copy of it.
func NewDetector(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := NewPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		cfg:     cfg.clone(),
		palette: palette,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns a copy of the detector's configuration.
func (d *Detector) Config() Config {
	return d.cfg.clone()
}

// Palette returns the detector's palette.
func (d *Detector) Palette() *Palette {
	return d.palette
}

// Candidate describes how one external contour fared in the pipeline.
type Candidate struct {
	// Index is the contour's position in discovery order.
	Index int `json:"index"`

	// Area is the enclosed contour area in square pixels.
	Area float64 `json:"area"`

	// Vertices is the vertex count after simplification, zero when the
	// contour was rejected before simplifying.
	Vertices int `json:"vertices"`

	// Reason is "accepted" or the rejection reason.
	Reason string `json:"reason"`

	// Sampling is the region the color was averaged over, empty for
	// rejected contours.
	Sampling SampleMethod `json:"sampling,omitempty"`

	// Detection is set for accepted contours.
	Detection *Detection `json:"detection,omitempty"`
}

// Detect runs the full pipeline on img and returns every square found, in
// contour discovery order. source is copied into the result's Filename.
//
// The result is either complete or an error; a nil or empty image fails with
// ErrInvalidImage. An image without squares yields an empty, non-nil
// Detections slice and all-zero counts.
func (d *Detector) Detect(img image.Image, source string) (*DetectionSet, error) {
	set, _, err := d.DetectWithCandidates(img, source)
	return set, err
}

// DetectWithCandidates is Detect that also returns the fate of every external
// contour, as Inspect reports it. The pipeline runs once for both.
func (d *Detector) DetectWithCandidates(img image.Image, source string) (*DetectionSet, []Candidate, error) {
	cands, err := d.analyze(img)
	if err != nil {
		return nil, nil, err
	}

	set := &DetectionSet{
		Filename:    source,
		Detections:  make([]Detection, 0),
		ColorCounts: NewColorCounts(d.palette.Names()),
	}
	for _, c := range cands {
		if c.Detection == nil {
			continue
		}
		set.Detections = append(set.Detections, *c.Detection)
		set.ColorCounts.Inc(c.Detection.Color)
	}

	d.log.Debug().
		Str("source", source).
		Int("contours", len(cands)).
		Int("detections", len(set.Detections)).
		Msg("image processed")
	return set, cands, nil
}

// Inspect runs the pipeline on img and reports the fate of every external
// contour, accepted or not.
func (d *Detector) Inspect(img image.Image) ([]Candidate, error) {
	return d.analyze(img)
}

func (d *Detector) analyze(img image.Image) ([]Candidate, error) {
	mask, err := imaging.BuildEdgeMap(img, d.cfg.Edge)
	if err != nil {
		return nil, err
	}
	pix := imaging.CloneNRGBA(img)

	contours := FindExternalContours(mask)
	cands := make([]Candidate, 0, len(contours))
	for i, c := range contours {
		cand := Candidate{Index: i, Area: ContourArea(c)}

		poly, rej := FilterQuad(c, d.cfg.Shape)
		cand.Vertices = len(poly)

		if rej == Accepted {
			det, method, err := d.measure(pix, c, poly)
			if err != nil {
				rej = RejectDegenerate
			} else {
				cand.Detection = &det
				cand.Sampling = method
			}
		}
		cand.Reason = rej.String()

		if rej != Accepted {
			d.log.Debug().
				Int("contour", i).
				Str("reason", cand.Reason).
				Float64("area", cand.Area).
				Int("vertices", cand.Vertices).
				Msg("contour rejected")
		}
		cands = append(cands, cand)
	}
	return cands, nil
}

// measure turns an accepted contour into a Detection.
func (d *Detector) measure(img *image.NRGBA, c Contour, poly Polygon) (Detection, SampleMethod, error) {
	center, err := Centroid(c)
	if err != nil {
		return Detection{}, "", err
	}
	rect := MinAreaRect(c)

	sample, method := SampleColor(img, c, poly, d.cfg.Sampling)
	name, _ := d.palette.Classify(sample.Color)

	return Detection{
		CX:       int(center.X),
		CY:       int(center.Y),
		SizePx:   int((rect.Width + rect.Height) / 2),
		AngleDeg: roundAngle(rect.Angle),
		Color:    name,
		Rect:     rect,
	}, method, nil
}

// roundAngle rounds to 0.1 degree and keeps the result in [-90, 90).
// Negative zero becomes zero so it encodes as 0.
func roundAngle(a float64) float64 {
	return normalizeAngle(math.Round(a*10)/10) + 0
}

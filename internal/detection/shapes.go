package detection

// ShapeParams configures which contours are accepted as squares.
type ShapeParams struct {
	// MinArea is the smallest enclosed contour area, in square pixels, that is
	// considered at all.
	MinArea float64 `yaml:"min_area" json:"min_area"`

	// EpsilonFraction scales the contour perimeter into the Douglas-Peucker
	// tolerance used to simplify the contour.
	EpsilonFraction float64 `yaml:"epsilon_fraction" json:"epsilon_fraction"`
}

// DefaultShapeParams returns the stock square filter settings.
func DefaultShapeParams() ShapeParams {
	return ShapeParams{
		MinArea:         200,
		EpsilonFraction: 0.02,
	}
}

// Rejection tells why a contour was not accepted as a square.
type Rejection int

const (
	// Accepted marks a contour that passed every check.
	Accepted Rejection = iota
	// RejectSmall marks a contour below the minimum area.
	RejectSmall
	// RejectVertexCount marks a contour that does not simplify to four vertices.
	RejectVertexCount
	// RejectConcave marks a quadrilateral that is not convex.
	RejectConcave
	// RejectDegenerate marks a contour whose centroid is undefined.
	RejectDegenerate
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectSmall:
		return "too_small"
	case RejectVertexCount:
		return "not_quadrilateral"
	case RejectConcave:
		return "not_convex"
	case RejectDegenerate:
		return "degenerate"
	}
	return "unknown"
}

// FilterQuad decides whether a contour outlines a square-like shape.
//
// The contour must enclose at least MinArea square pixels and simplify, with
// tolerance EpsilonFraction times its perimeter, to exactly four vertices
// forming a convex polygon. The simplified polygon is returned whenever it was
// computed, even for a rejected contour.
//
// Checks run in order, so the first failing one determines the Rejection.
func FilterQuad(c Contour, p ShapeParams) (Polygon, Rejection) {
	if ContourArea(c) < p.MinArea {
		return nil, RejectSmall
	}

	poly := ApproxPolygon(c, p.EpsilonFraction*ArcLength(c))
	if len(poly) != 4 {
		return poly, RejectVertexCount
	}
	if !IsConvex(poly) {
		return poly, RejectConcave
	}
	return poly, Accepted
}

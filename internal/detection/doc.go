// Package detection finds colored, possibly rotated squares in still images
// and classifies each by its nearest palette color.
//
// # Pipeline
//
// A Detector runs the same steps on every image:
//
//  1. Edge map: grayscale, Gaussian blur, Canny and morphological closing
//     (see imaging.BuildEdgeMap).
//  2. Contours: the outer boundary of every outermost edge region, traced
//     with Moore-neighbor tracing.
//  3. Shape filter: contours below a minimum area are dropped; the rest are
//     simplified with Douglas-Peucker and kept only when they become a convex
//     quadrilateral.
//  4. Geometry: centroid from contour moments and the minimum-area rotated
//     rectangle, which gives size and angle.
//  5. Color: the mean color of the rectangle's trimmed bounding box, or of the
//     whole contour for very small squares, matched to the nearest palette
//     entry in RGB.
//
// Rejected contours are not errors. They show up only in debug logs and in
// Detector.Inspect.
//
// # Coordinate System
//
// All coordinates are relative to the image's top-left corner, whatever the
// image's bounds origin:
//   - X increases rightward
//   - Y increases downward
//   - Angles are measured from the X axis toward Y, so they grow clockwise
//     on screen, and lie in [-90, 90)
//
// # Output
//
// DetectionSet marshals to the export format
//
//	{
//	  "filename": "shapes.png",
//	  "detections": [
//	    {"cx": 120, "cy": 88, "size_px": 61, "angle_deg": -12.5, "color": "red"}
//	  ],
//	  "color_counts": {"red": 1, "green": 0, "blue": 0, "yellow": 0}
//	}
//
// with color_counts keys in palette order. Annotate draws the same result onto
// a copy of the image.
//
// # Limitations
//
// The pipeline is tuned for clean, high-contrast images of solid squares.
// Squares touching each other merge into one contour, and squares nested
// inside another outline are not reported.
package detection

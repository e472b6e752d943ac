// Package imaging provides the pixel-level building blocks of the square detector.
//
// This package implements image loading and saving, the edge map builder
// (grayscale, blur, Canny, morphological closing), binary masks, mean color
// sampling, and the drawing primitives used to annotate results. All
// operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive
//
// BinaryMask values are always anchored at (0,0) regardless of the source
// image's bounds.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different images. Drawing
// functions mutate their destination and must not share it across goroutines.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Nil or empty images (ErrInvalidImage)
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging

package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned when an image is nil or has no pixels.
var ErrInvalidImage = errors.New("invalid image")

// EdgeParams configures the edge map builder.
type EdgeParams struct {
	// LowThreshold is the hysteresis low threshold on the 0-255 gradient scale.
	// Weak edges between Low and High survive only when connected to a strong edge.
	LowThreshold int `yaml:"low_threshold" json:"low_threshold"`

	// HighThreshold is the strong-edge threshold on the 0-255 gradient scale.
	HighThreshold int `yaml:"high_threshold" json:"high_threshold"`

	// CloseKernel is the side of the square structuring element used to close
	// gaps in the edge map. Values <= 1 disable closing.
	CloseKernel int `yaml:"close_kernel" json:"close_kernel"`
}

// DefaultEdgeParams returns thresholds suited to clean, solid-color images.
//
// A blurred step edge peaks at roughly 2.5 times its luminance difference, so
// a high threshold of 50 keeps any boundary whose sides differ by about 20
// gray levels. That separates pure red, green, blue and yellow from a light
// gray background without outlines around the squares.
func DefaultEdgeParams() EdgeParams {
	return EdgeParams{
		LowThreshold:  20,
		HighThreshold: 50,
		CloseKernel:   5,
	}
}

// BuildEdgeMap turns a color image into a binary boundary mask.
//
// # Algorithm
//
//  1. Grayscale conversion with fixed luminance weights.
//  2. 5x5 Gaussian blur to suppress sensor and compression noise.
//  3. Canny edge detection: Sobel gradients, non-maximum suppression and
//     double-threshold hysteresis.
//  4. Morphological closing with a CloseKernel×CloseKernel square so that the
//     outline of a closed shape becomes one contiguous boundary.
//
// The mask has the same dimensions as img with its origin at (0, 0).
// A nil or empty image fails with ErrInvalidImage.
func BuildEdgeMap(img image.Image, p EdgeParams) (*BinaryMask, error) {
	if img == nil {
		return nil, fmt.Errorf("edge map: %w: nil image", ErrInvalidImage)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("edge map: %w: empty bounds %v", ErrInvalidImage, b)
	}

	smooth := gaussianBlur(grayscale(img))
	g := sobel(smooth)
	edges := hysteresis(g.suppressNonMax(), float64(p.LowThreshold)/255, float64(p.HighThreshold)/255)

	if p.CloseKernel > 1 {
		edges = edges.Close(p.CloseKernel)
	}
	return edges, nil
}

// plane is a row-major grid of float samples. Reads outside the grid are
// clamped to the nearest edge sample.
type plane struct {
	w, h int
	v    []float64
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, v: make([]float64, w*h)}
}

func (p *plane) at(x, y int) float64 {
	return p.v[clamp(y, 0, p.h-1)*p.w+clamp(x, 0, p.w-1)]
}

func (p *plane) set(x, y int, v float64) {
	p.v[y*p.w+x] = v
}

// grayscale converts img to luminance in the range 0-1.
func grayscale(img image.Image) *plane {
	// Clone first so the grayscale pass always sees an origin-anchored NRGBA.
	// bild writes the luminance into all three channels of an RGBA image.
	g := effect.Grayscale(imaging.Clone(img))
	gb := g.Bounds()

	out := newPlane(gb.Dx(), gb.Dy())
	for y := 0; y < out.h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < out.w; x++ {
			out.set(x, y, float64(row[x*4])/255)
		}
	}
	return out
}

// gaussianKernel is the 5x5 kernel for sigma ≈ 1.4; its entries sum to 273.
var gaussianKernel = [5][5]float64{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

func gaussianBlur(src *plane) *plane {
	out := newPlane(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += src.at(x+kx, y+ky) * gaussianKernel[ky+2][kx+2]
				}
			}
			out.set(x, y, sum/273)
		}
	}
	return out
}

// gradient holds Sobel magnitude and a quantized direction per pixel.
// Direction sector 0 is horizontal, 1 the main diagonal, 2 vertical and
// 3 the anti-diagonal.
type gradient struct {
	mag    *plane
	sector []uint8
}

// sectorStep is the neighbor offset along the gradient for each sector.
var sectorStep = [4]image.Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}

func sobel(src *plane) *gradient {
	g := &gradient{mag: newPlane(src.w, src.h), sector: make([]uint8, src.w*src.h)}
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			gx := src.at(x+1, y-1) + 2*src.at(x+1, y) + src.at(x+1, y+1) -
				src.at(x-1, y-1) - 2*src.at(x-1, y) - src.at(x-1, y+1)
			gy := src.at(x-1, y+1) + 2*src.at(x, y+1) + src.at(x+1, y+1) -
				src.at(x-1, y-1) - 2*src.at(x, y-1) - src.at(x+1, y-1)

			g.mag.set(x, y, math.Hypot(gx, gy))
			g.sector[y*src.w+x] = directionSector(math.Atan2(gy, gx))
		}
	}
	return g
}

// directionSector folds angle onto [0, π) and rounds it to the nearest
// multiple of 45 degrees.
func directionSector(angle float64) uint8 {
	if angle < 0 {
		angle += math.Pi
	}
	return uint8(int(math.Floor((angle+math.Pi/8)/(math.Pi/4))) % 4)
}

// suppressNonMax keeps only pixels whose magnitude is a local maximum across
// the edge. The one-pixel image border is always suppressed.
func (g *gradient) suppressNonMax() *plane {
	w, h := g.mag.w, g.mag.h
	out := newPlane(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := g.mag.at(x, y)
			d := sectorStep[g.sector[y*w+x]]
			if m >= g.mag.at(x-d.X, y-d.Y) && m >= g.mag.at(x+d.X, y+d.Y) {
				out.set(x, y, m)
			}
		}
	}
	return out
}

// hysteresis marks every non-zero pixel at or above high, then floods from
// those over 8-connected pixels that are non-zero and at or above low. With
// both thresholds at 0 every pixel that survived suppression is kept.
func hysteresis(nms *plane, low, high float64) *BinaryMask {
	out := NewBinaryMask(nms.w, nms.h)
	stack := make([]image.Point, 0, 256)

	for y := 0; y < nms.h; y++ {
		for x := 0; x < nms.w; x++ {
			if v := nms.at(x, y); v < high || v <= 0 || out.On(x, y) {
				continue
			}
			out.Set(x, y, true)
			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if !out.In(nx, ny) || out.On(nx, ny) {
							continue
						}
						if v := nms.at(nx, ny); v >= low && v > 0 {
							out.Set(nx, ny, true)
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}
		}
	}
	return out
}

// EdgeMapResult contains an edge map encoded as base64 PNG.
//
// The image is grayscale: white pixels (255) are boundary pixels after
// closing, black pixels (0) are background.
type EdgeMapResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of boundary pixels in the mask.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the mask encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EdgeMap builds the binary boundary mask for img and encodes it for transport.
func EdgeMap(img image.Image, p EdgeParams) (*EdgeMapResult, error) {
	mask, err := BuildEdgeMap(img, p)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNGBase64(mask.Gray())
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge map: %w", err)
	}

	return &EdgeMapResult{
		Width:       mask.Width,
		Height:      mask.Height,
		EdgePixels:  mask.Count(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

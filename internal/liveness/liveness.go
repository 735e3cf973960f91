// Package liveness implements the frame-variation spoof heuristic: a real
// subject in front of a camera produces pixel-level change between two
// successive frames, while a static printed photo does not.
//
// This is a documented heuristic, not a security guarantee. A moving
// photo or a video replay can register as live; stronger defenses belong
// to a dedicated anti-spoofing model, which is out of scope here.
package liveness

import (
	"errors"
	"image"
	"math"
)

// DefaultVariationThreshold is the minimum variation score accepted as live.
const DefaultVariationThreshold = 500

// ErrDimensionMismatch is returned when the two compared frames do not
// have the same width and height.
var ErrDimensionMismatch = errors.New("liveness frames have different dimensions")

// Verdict is the result of a single liveness check. Recomputed every call,
// never persisted.
type Verdict struct {
	Live  bool
	Score float64 // raw variation score, exposed for diagnostics
}

// Check compares two frames restricted to the same region (the caller
// crops to a face bounding box beforehand) and returns a live verdict.
//
// The variation score is the SUM of absolute per-pixel grayscale
// differences (BT.601 luma, 0-255 scale) across the whole region. The
// frame is live when the score strictly exceeds threshold.
//
// Check is a pure function: both frames come from the caller and nothing
// is remembered between calls.
func Check(prev, curr image.Image, threshold float64) (Verdict, error) {
	pb, cb := prev.Bounds(), curr.Bounds()
	if pb.Dx() != cb.Dx() || pb.Dy() != cb.Dy() {
		return Verdict{}, ErrDimensionMismatch
	}

	prevGray := toGrayscale(prev)
	currGray := toGrayscale(curr)

	var score float64
	for x := range len(prevGray) {
		for y := range len(prevGray[x]) {
			score += math.Abs(prevGray[x][y] - currGray[x][y])
		}
	}

	return Verdict{
		Live:  score > threshold,
		Score: score,
	}, nil
}

// toGrayscale converts an image to a 2D array of luma values (0-255).
func toGrayscale(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, width)
	for x := range width {
		gray[x] = make([]float64, height)
		for y := range height {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray[x][y] = luma
		}
	}

	return gray
}

// Package match scores a probe embedding against the gallery and decides
// whether it identifies an enrolled person.
package match

import (
	"errors"
	"math"

	"github.com/mhornak/faceclock/internal/gallery"
)

// DefaultTolerance is the standard maximum Euclidean distance for a match.
const DefaultTolerance = 0.6

// Result describes the outcome of a single match query. It is produced
// fresh per call and never persisted.
type Result struct {
	Matched    bool
	Identity   string  // empty when Matched is false
	Distance   float64 // smallest distance found; meaningful even on no-match
	Confidence float64 // in [0, 1]; 0 when Matched is false
}

// EuclideanDistance computes sqrt(sum((a[i]-b[i])^2)) over two vectors of
// equal length. Returns +Inf for mismatched lengths so the caller's
// threshold comparison always fails.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match finds the best gallery entry for the probe. An empty gallery is an
// expected operating condition and yields a no-match result rather than an
// error. The result is deterministic for fixed inputs; equal-distance
// entries resolve to the first-enrolled one because the gallery's
// nearest-neighbor scan uses a strict comparison.
func Match(probe []float64, g *gallery.Gallery, tolerance float64) (Result, error) {
	entry, dist, err := g.NearestNeighbor(probe)
	if err != nil {
		if errors.Is(err, gallery.ErrEmptyGallery) {
			return Result{}, nil
		}
		return Result{}, err
	}

	if dist > tolerance {
		// Expose the distance for diagnostics ("how far off was it").
		return Result{Distance: dist}, nil
	}

	return Result{
		Matched:    true,
		Identity:   entry.Identity,
		Distance:   dist,
		Confidence: confidence(dist, tolerance),
	}, nil
}

// confidence maps a distance to [0, 1]: 1 at distance 0, falling linearly
// to 0 at the tolerance boundary. Clamped on both ends so the formula
// stays total even for out-of-range inputs.
func confidence(dist, tolerance float64) float64 {
	c := 1 - dist/tolerance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

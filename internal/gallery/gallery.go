// Package gallery holds the set of enrolled (identity, embedding) pairs
// and answers nearest-neighbor queries against it.
package gallery

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// ErrEmptyGallery is returned by NearestNeighbor when nothing is enrolled.
// Callers that treat an empty gallery as a routine condition (the match
// engine does) absorb it into a no-match value.
var ErrEmptyGallery = errors.New("gallery is empty")

// ValidationError reports malformed enrollment input. It is raised before
// any state change.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid gallery input: " + e.Reason
}

// Entry is a single enrolled identity with its embedding vector.
type Entry struct {
	Identity  string    `json:"identity"`
	Embedding []float64 `json:"embedding"`
}

// Gallery is an ordered, mutex-guarded collection of entries. Identities
// are unique; re-enrolling a name overwrites its embedding in place so the
// original insertion position (and with it nearest-neighbor tie-breaking)
// stays stable.
type Gallery struct {
	mu      sync.RWMutex
	dim     int
	entries []Entry
	index   map[string]int // identity -> position in entries
	dirty   bool
}

// New creates an empty gallery for embeddings of the given length.
func New(dim int) *Gallery {
	return &Gallery{
		dim:   dim,
		index: make(map[string]int),
	}
}

// Dim returns the embedding length this gallery was created for.
func (g *Gallery) Dim() int {
	return g.dim
}

// Add enrolls an identity, overwriting any previous embedding for the same
// name (last write wins). The gallery is marked dirty for persistence.
func (g *Gallery) Add(identity string, embedding []float64) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return &ValidationError{Reason: "identity must not be empty"}
	}
	if len(embedding) != g.dim {
		return &ValidationError{Reason: fmt.Sprintf("embedding has length %d, expected %d", len(embedding), g.dim)}
	}

	// Copy so the caller cannot mutate the stored vector afterwards.
	vec := make([]float64, len(embedding))
	copy(vec, embedding)

	g.mu.Lock()
	defer g.mu.Unlock()

	if pos, ok := g.index[identity]; ok {
		g.entries[pos].Embedding = vec
	} else {
		g.index[identity] = len(g.entries)
		g.entries = append(g.entries, Entry{Identity: identity, Embedding: vec})
	}
	g.dirty = true

	return nil
}

// NearestNeighbor returns the entry with the smallest Euclidean distance to
// the probe, along with that distance. Ties are broken by insertion order:
// the comparison is strict, so the first-enrolled entry wins.
func (g *Gallery) NearestNeighbor(probe []float64) (Entry, float64, error) {
	if len(probe) != g.dim {
		return Entry{}, 0, &ValidationError{Reason: fmt.Sprintf("probe has length %d, expected %d", len(probe), g.dim)}
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.entries) == 0 {
		return Entry{}, 0, ErrEmptyGallery
	}

	best := 0
	bestDist := euclidean(probe, g.entries[0].Embedding)
	for i := 1; i < len(g.entries); i++ {
		if d := euclidean(probe, g.entries[i].Embedding); d < bestDist {
			best = i
			bestDist = d
		}
	}

	return g.entries[best], bestDist, nil
}

// Size returns the number of enrolled identities.
func (g *Gallery) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Identities returns enrolled names in insertion order.
func (g *Gallery) Identities() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.Identity
	}
	return names
}

// Dirty reports whether the gallery has unsaved changes.
func (g *Gallery) Dirty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dirty
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

package recognize

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/mhornak/faceclock/internal/extractor"
	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/mhornak/faceclock/internal/ledger/memory"
	"github.com/mhornak/faceclock/internal/liveness"
)

// frame builds a uniform grayscale frame; two frames with different levels
// produce a variation score of width*height*|levelA-levelB|.
func frame(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func setup(t *testing.T) (*Recognizer, *gallery.Gallery, *memory.Store) {
	t.Helper()
	g := gallery.New(3)
	store := memory.NewStore()
	l := ledger.New(store, time.UTC)
	// Tolerance 0.6, liveness threshold 500.
	return New(g, l, 0.6, 500), g, store
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAttempt_FullDayScenario(t *testing.T) {
	r, g, store := setup(t)
	ctx := context.Background()

	if err := g.Add("Alice", []float64{0.5, 0.5, 0.5}); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Frames differing by 6 levels over 10x10 pixels: score 600 > 500.
	prev, curr := frame(10, 10, 100), frame(10, 10, 106)
	probe := []float64{0.5, 0.5, 0.6} // distance 0.1 from Alice

	out, err := r.Attempt(ctx, probe, prev, curr, ts("2024-03-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("morning attempt: %v", err)
	}
	if out.Status != StatusPunchedIn {
		t.Fatalf("expected punch-in, got %s", out.Status)
	}
	if out.Identity != "Alice" {
		t.Errorf("expected Alice, got %s", out.Identity)
	}
	if out.LivenessScore != 600 {
		t.Errorf("expected liveness score 600, got %f", out.LivenessScore)
	}
	if out.Confidence <= 0.8 {
		t.Errorf("expected high confidence at distance 0.1, got %f", out.Confidence)
	}

	out, err = r.Attempt(ctx, probe, prev, curr, ts("2024-03-15T17:00:00Z"))
	if err != nil {
		t.Fatalf("evening attempt: %v", err)
	}
	if out.Status != StatusPunchedOut {
		t.Fatalf("expected punch-out, got %s", out.Status)
	}

	out, err = r.Attempt(ctx, probe, prev, curr, ts("2024-03-15T17:30:00Z"))
	if err != nil {
		t.Fatalf("late attempt: %v", err)
	}
	if out.Status != StatusAlreadyComplete {
		t.Fatalf("expected already-complete, got %s", out.Status)
	}

	if store.Len() != 1 {
		t.Errorf("expected one attendance record, got %d", store.Len())
	}
}

func TestAttempt_NotLiveShortCircuits(t *testing.T) {
	r, g, store := setup(t)
	ctx := context.Background()

	g.Add("Alice", []float64{0.5, 0.5, 0.5})

	// Identical frames: zero variation, certain rejection.
	same := frame(10, 10, 128)
	out, err := r.Attempt(ctx, []float64{0.5, 0.5, 0.5}, same, same, ts("2024-03-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}

	if out.Status != StatusRejectedNotLive {
		t.Fatalf("expected not-live rejection, got %s", out.Status)
	}
	if out.Identity != "" {
		t.Errorf("not-live rejection must not carry an identity, got %s", out.Identity)
	}
	if store.Len() != 0 {
		t.Errorf("not-live attempt must not touch the ledger, found %d records", store.Len())
	}
}

func TestAttempt_UnrecognizedProbeLeavesLedgerAlone(t *testing.T) {
	r, g, store := setup(t)
	ctx := context.Background()

	g.Add("Alice", []float64{0, 0, 0})

	// Probe at distance 0.9 with tolerance 0.6.
	out, err := r.Attempt(ctx, []float64{0.9, 0, 0}, frame(10, 10, 100), frame(10, 10, 110), ts("2024-03-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}

	if out.Status != StatusRejectedUnrecognized {
		t.Fatalf("expected unrecognized rejection, got %s", out.Status)
	}
	if out.Distance < 0.89 || out.Distance > 0.91 {
		t.Errorf("expected diagnostic distance ~0.9, got %f", out.Distance)
	}
	if store.Len() != 0 {
		t.Errorf("unrecognized attempt must not touch the ledger, found %d records", store.Len())
	}
}

func TestAttempt_EmptyGalleryIsUnrecognized(t *testing.T) {
	r, _, _ := setup(t)

	out, err := r.Attempt(context.Background(), []float64{1, 2, 3}, frame(4, 4, 0), frame(4, 4, 200), ts("2024-03-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if out.Status != StatusRejectedUnrecognized {
		t.Errorf("expected unrecognized against empty gallery, got %s", out.Status)
	}
}

func TestAttempt_MismatchedFramesAreBadFrames(t *testing.T) {
	r, g, store := setup(t)

	g.Add("Alice", []float64{0.5, 0.5, 0.5})

	out, err := r.Attempt(context.Background(), []float64{0.5, 0.5, 0.5}, frame(10, 10, 0), frame(12, 10, 0), ts("2024-03-15T09:00:00Z"))
	if !errors.Is(err, liveness.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch error, got %v", err)
	}
	if out.Status != StatusRejectedBadFrames {
		t.Errorf("expected bad-frames status, got %s", out.Status)
	}
	if store.Len() != 0 {
		t.Errorf("bad frames must not touch the ledger, found %d records", store.Len())
	}
}

// fakeExtractor returns a fixed set of detections.
type fakeExtractor struct {
	detections []extractor.Detection
	err        error
}

func (f *fakeExtractor) Extract(ctx context.Context, frame []byte) ([]extractor.Detection, error) {
	return f.detections, f.err
}

func TestRegister_ExactlyOneFaceRequired(t *testing.T) {
	g := gallery.New(3)

	one := extractor.Detection{Embedding: []float64{0.1, 0.2, 0.3}}

	tests := []struct {
		name       string
		detections []extractor.Detection
		registered bool
	}{
		{"no faces", nil, false},
		{"one face", []extractor.Detection{one}, true},
		{"two faces", []extractor.Detection{one, one}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistrar(&fakeExtractor{detections: tt.detections}, g, "")
			res, err := reg.Register(context.Background(), "Alice", []byte("frame"))
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if res.Registered != tt.registered {
				t.Errorf("expected registered=%v, got %+v", tt.registered, res)
			}
			if res.FaceCount != len(tt.detections) {
				t.Errorf("expected face count %d, got %d", len(tt.detections), res.FaceCount)
			}
		})
	}
}

func TestRegister_ExtractorFailureIsAnError(t *testing.T) {
	g := gallery.New(3)
	reg := NewRegistrar(&fakeExtractor{err: errors.New("service down")}, g, "")

	if _, err := reg.Register(context.Background(), "Alice", []byte("frame")); err == nil {
		t.Fatal("expected error when the extractor fails")
	}
	if g.Size() != 0 {
		t.Error("failed registration must not modify the gallery")
	}
}

func TestRegister_WrongDimensionRejected(t *testing.T) {
	g := gallery.New(3)
	reg := NewRegistrar(&fakeExtractor{
		detections: []extractor.Detection{{Embedding: []float64{0.1, 0.2}}},
	}, g, "")

	_, err := reg.Register(context.Background(), "Alice", []byte("frame"))
	var verr *gallery.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for wrong embedding length, got %v", err)
	}
}

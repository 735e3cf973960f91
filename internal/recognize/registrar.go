package recognize

import (
	"context"
	"fmt"

	"github.com/mhornak/faceclock/internal/extractor"
	"github.com/mhornak/faceclock/internal/gallery"
)

// Extractor produces face detections for a frame. Satisfied by
// *extractor.Client; tests substitute their own.
type Extractor interface {
	Extract(ctx context.Context, frame []byte) ([]extractor.Detection, error)
}

// RegistrationResult reports an enrollment attempt. A frame with zero or
// several faces is a routine rejection, not an error.
type RegistrationResult struct {
	Registered bool   `json:"registered"`
	FaceCount  int    `json:"face_count"`
	Reason     string `json:"reason,omitempty"`
}

// Registrar enrolls identities from camera frames via the external
// embedding extractor.
type Registrar struct {
	extractor   Extractor
	gallery     *gallery.Gallery
	galleryPath string // saved here after each successful enrollment; empty disables
}

// NewRegistrar creates a registrar writing into the given gallery.
func NewRegistrar(ex Extractor, g *gallery.Gallery, galleryPath string) *Registrar {
	return &Registrar{
		extractor:   ex,
		gallery:     g,
		galleryPath: galleryPath,
	}
}

// Register extracts a face embedding from the frame and enrolls it under
// the identity. Exactly one detected face is required: registration with
// zero faces fails for obvious reasons, and with several faces the wrong
// person might get enrolled.
func (r *Registrar) Register(ctx context.Context, identity string, frame []byte) (RegistrationResult, error) {
	detections, err := r.extractor.Extract(ctx, frame)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("extracting faces: %w", err)
	}

	switch {
	case len(detections) == 0:
		return RegistrationResult{
			FaceCount: 0,
			Reason:    "no face detected",
		}, nil
	case len(detections) > 1:
		return RegistrationResult{
			FaceCount: len(detections),
			Reason:    fmt.Sprintf("%d faces detected, register one at a time", len(detections)),
		}, nil
	}

	if err := r.gallery.Add(identity, detections[0].Embedding); err != nil {
		return RegistrationResult{}, fmt.Errorf("enrolling %s: %w", identity, err)
	}

	if r.galleryPath != "" {
		if err := r.gallery.Save(r.galleryPath); err != nil {
			return RegistrationResult{}, fmt.Errorf("persisting gallery: %w", err)
		}
	}

	return RegistrationResult{Registered: true, FaceCount: 1}, nil
}

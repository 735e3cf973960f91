package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/recognize"
)

// GalleryHandler handles enrollment and gallery inspection endpoints.
type GalleryHandler struct {
	gallery     *gallery.Gallery
	registrar   *recognize.Registrar
	galleryPath string
}

// NewGalleryHandler creates a new gallery handler. The registrar may be nil
// when no extractor service is configured; image enrollment then returns 503.
func NewGalleryHandler(g *gallery.Gallery, registrar *recognize.Registrar, galleryPath string) *GalleryHandler {
	return &GalleryHandler{
		gallery:     g,
		registrar:   registrar,
		galleryPath: galleryPath,
	}
}

// List returns the enrolled identities.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"dim":        h.gallery.Dim(),
		"size":       h.gallery.Size(),
		"identities": h.gallery.Identities(),
	})
}

// Enroll adds an identity with a precomputed embedding.
func (h *GalleryHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity  string    `json:"identity"`
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.gallery.Add(req.Identity, req.Embedding); err != nil {
		var ve *gallery.ValidationError
		if errors.As(err, &ve) {
			respondError(w, http.StatusBadRequest, ve.Error())
			return
		}
		log.Printf("Failed to enroll %s: %v", sanitizeForLog(req.Identity), err)
		respondError(w, http.StatusInternalServerError, "failed to enroll identity")
		return
	}

	if h.galleryPath != "" {
		if err := h.gallery.Save(h.galleryPath); err != nil {
			log.Printf("Failed to persist gallery: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to persist gallery")
			return
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"identity": req.Identity,
		"size":     h.gallery.Size(),
	})
}

// Register enrolls an identity from a captured image. The image is sent to
// the extractor service; exactly one detected face is required.
func (h *GalleryHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.registrar == nil {
		respondError(w, http.StatusServiceUnavailable, "no extractor service configured")
		return
	}

	var req struct {
		Identity string `json:"identity"`
		Image    string `json:"image"` // base64 encoded image
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	frame, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	result, err := h.registrar.Register(r.Context(), req.Identity, frame)
	if err != nil {
		var ve *gallery.ValidationError
		if errors.As(err, &ve) {
			respondError(w, http.StatusBadRequest, ve.Error())
			return
		}
		log.Printf("Failed to register %s: %v", sanitizeForLog(req.Identity), err)
		respondError(w, http.StatusBadGateway, "face extraction failed")
		return
	}

	// A rejection (no face, several faces) is a regular response.
	status := http.StatusCreated
	if !result.Registered {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

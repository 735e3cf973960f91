package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/liveness"
	"github.com/mhornak/faceclock/internal/recognize"
)

// RecognizeHandler handles recognition attempts from a kiosk camera.
type RecognizeHandler struct {
	recognizer *recognize.Recognizer
	now        func() time.Time
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(recognizer *recognize.Recognizer) *RecognizeHandler {
	return &RecognizeHandler{
		recognizer: recognizer,
		now:        time.Now,
	}
}

type attemptRequest struct {
	Probe     []float64 `json:"probe"`
	PrevFrame string    `json:"prev_frame"` // base64 encoded image
	CurrFrame string    `json:"curr_frame"` // base64 encoded image
}

// Attempt runs the full recognition pipeline on a probe embedding and two
// consecutive camera frames. Rejections come back as 200 with a status field;
// only malformed input and infrastructure failures are HTTP errors.
func (h *RecognizeHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	prev, err := decodeBase64Frame(req.PrevFrame)
	if err != nil {
		respondError(w, http.StatusBadRequest, "prev_frame: "+err.Error())
		return
	}
	curr, err := decodeBase64Frame(req.CurrFrame)
	if err != nil {
		respondError(w, http.StatusBadRequest, "curr_frame: "+err.Error())
		return
	}

	outcome, err := h.recognizer.Attempt(r.Context(), req.Probe, prev, curr, h.now())
	if err != nil {
		var ve *gallery.ValidationError
		if errors.Is(err, liveness.ErrDimensionMismatch) || errors.As(err, &ve) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Recognition attempt failed: %v", err)
		respondError(w, http.StatusInternalServerError, "recognition attempt failed")
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// decodeBase64Frame decodes a base64 payload into an image.
func decodeBase64Frame(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("must be base64 encoded")
	}
	img, err := liveness.DecodeFrame(data)
	if err != nil {
		return nil, errors.New("unsupported image format")
	}
	return img, nil
}

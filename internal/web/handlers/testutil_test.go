package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/mhornak/faceclock/internal/ledger/memory"
)

// testGallery creates a small 3-dimensional gallery for handler tests.
func testGallery(t *testing.T, entries map[string][]float64) *gallery.Gallery {
	t.Helper()
	g := gallery.New(3)
	for identity, emb := range entries {
		if err := g.Add(identity, emb); err != nil {
			t.Fatalf("failed to seed gallery: %v", err)
		}
	}
	return g
}

// testLedger creates a UTC ledger backed by an in-memory store.
func testLedger() (*ledger.Ledger, *memory.Store) {
	store := memory.NewStore()
	return ledger.New(store, time.UTC), store
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// framePNG encodes a uniform grayscale image as a base64 PNG payload.
func framePNG(t *testing.T, width, height int, brightness uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = brightness
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// decodeBody decodes a JSON response body into a map.
func decodeBody(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.NewDecoder(body).Decode(&data); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return data
}

package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtract(t *testing.T) {
	frame := []byte{0x01, 0x02, 0x03}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}

		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(decoded) != string(frame) {
			t.Errorf("frame bytes did not round-trip: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{
				{
					"bbox":      []float64{10, 20, 110, 140},
					"embedding": []float64{0.1, 0.2, 0.3},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	detections, err := client.Extract(context.Background(), frame)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].BBox != [4]float64{10, 20, 110, 140} {
		t.Errorf("unexpected bbox %v", detections[0].BBox)
	}
	if len(detections[0].Embedding) != 3 || detections[0].Embedding[2] != 0.3 {
		t.Errorf("unexpected embedding %v", detections[0].Embedding)
	}
}

func TestExtract_NoFacesIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"detections": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	detections, err := client.Extract(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("expected no detections, got %d", len(detections))
	}
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Extract(context.Background(), []byte("frame")); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

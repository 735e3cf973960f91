// Package extractor is the client for the external embedding service: it
// sends a frame and gets back the detected faces, each with a bounding box
// and a fixed-length embedding vector. Face detection and the model behind
// it live entirely on the service side.
package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Detection is one face found in a frame.
type Detection struct {
	BBox      [4]float64 `json:"bbox"` // [x1, y1, x2, y2] in frame pixels
	Embedding []float64  `json:"embedding"`
}

// Client talks to the embedding extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an extractor client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type extractRequest struct {
	Image string `json:"image"` // base64-encoded frame bytes
}

type extractResponse struct {
	Detections []Detection `json:"detections"`
}

// Extract sends a frame to the service and returns all detected faces.
// Zero detections is a valid response, not an error.
func (c *Client) Extract(ctx context.Context, frame []byte) ([]Detection, error) {
	payload, err := json.Marshal(extractRequest{
		Image: base64.StdEncoding.EncodeToString(frame),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extractor service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("extractor service returned %d: %s", resp.StatusCode, body)
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding extract response: %w", err)
	}

	return result.Detections, nil
}

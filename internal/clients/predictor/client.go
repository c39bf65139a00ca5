// Package predictor wraps the disease inference service. The model itself is
// opaque; this client only speaks its small HTTP contract.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plantcare-be/internal/models"
)

type predictResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Client sends plant images to the inference endpoint and returns the
// predicted disease label with its confidence.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New constructs a predictor client for the given endpoint.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Predict submits the raw image bytes and returns the model's prediction.
// A response without a label counts as a failed prediction.
func (c *Client) Predict(ctx context.Context, image []byte, contentType string) (models.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/predict", bytes.NewReader(image))
	if err != nil {
		return models.Prediction{}, fmt.Errorf("build predict request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("call predictor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Prediction{}, fmt.Errorf("predictor returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Prediction{}, fmt.Errorf("decode predictor response: %w", err)
	}
	if out.Label == "" {
		return models.Prediction{}, fmt.Errorf("predictor returned no label")
	}

	return models.Prediction{Label: out.Label, Confidence: out.Confidence}, nil
}

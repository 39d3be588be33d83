package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single collaborator round trip.
const DefaultTimeout = 10 * time.Second

// Client talks to the collaborator service over HTTP. The zero value
// is not usable; construct with NewClient.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient builds a collaborator client. An empty timeout gets the
// default.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("enrichment base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("enrichment API key is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Enrich sends one task snapshot and decodes the suggested fields.
// The response is clamped before it is returned.
func (c *Client) Enrich(ctx context.Context, req Request) (Fields, error) {
	payload := struct {
		Model string  `json:"model,omitempty"`
		Task  Request `json:"task"`
	}{Model: c.model, Task: req}

	body, err := json.Marshal(payload)
	if err != nil {
		return Fields{}, fmt.Errorf("failed to encode enrichment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/enrich", bytes.NewReader(body))
	if err != nil {
		return Fields{}, fmt.Errorf("failed to build enrichment request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Fields{}, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Fields{}, fmt.Errorf("enrichment service returned %d: %s", resp.StatusCode, snippet)
	}

	var fields Fields
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return Fields{}, fmt.Errorf("failed to decode enrichment response: %w", err)
	}

	return fields.Clamped(), nil
}

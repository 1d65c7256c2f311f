package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPEnhancer posts {query, catalogSummary} to an endpoint and expects
// {results: [{itemId, relevanceScore, matchedFields, reasoning}]} back.
type HTTPEnhancer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPEnhancer creates an enhancer for endpoint. The per-call deadline
// comes from the context, so the client carries no timeout of its own.
func NewHTTPEnhancer(endpoint, apiKey string, client *http.Client) *HTTPEnhancer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPEnhancer{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (h *HTTPEnhancer) Name() string { return "http" }

type enhanceRequest struct {
	Query          string        `json:"query"`
	CatalogSummary []ItemSummary `json:"catalogSummary"`
}

// Enhance sends one request. Non-2xx, undecodable or empty answers are errors.
func (h *HTTPEnhancer) Enhance(ctx context.Context, query string, summaries []ItemSummary) (*RemoteResponse, error) {
	body, err := json.Marshal(enhanceRequest{Query: query, CatalogSummary: summaries})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("remote returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out RemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode remote response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, ErrEmptyRemoteResponse
	}
	return &out, nil
}

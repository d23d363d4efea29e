package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jward/codegraph/internal/graph"
)

// HTTPStore talks to an external graph service. Bulk inserts POST to
// /api/graph/bulk and the symbol index comes from GET /api/graph/symbols,
// both authenticated with an X-API-Key header.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore returns a store client for the service at baseURL (no trailing
// slash needed).
func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type bulkRequest struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// BulkInsert sends one batch of nodes and edges. Non-2xx responses are
// returned as errors with the response body for context.
func (s *HTTPStore) BulkInsert(ctx context.Context, nodes []graph.Node, edges []graph.Edge) (BulkResult, error) {
	var res BulkResult

	body, err := json.Marshal(bulkRequest{Nodes: nodes, Edges: edges})
	if err != nil {
		return res, fmt.Errorf("marshal bulk request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/graph/bulk", bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("build bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return res, fmt.Errorf("bulk insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return res, fmt.Errorf("bulk insert: status %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return res, fmt.Errorf("decode bulk response: %w", err)
	}
	return res, nil
}

type symbolsResponse struct {
	Symbols []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"symbols"`
}

// SymbolIndex fetches the full symbol list and folds it into a name→id map.
func (s *HTTPStore) SymbolIndex(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/api/graph/symbols", nil)
	if err != nil {
		return nil, fmt.Errorf("build symbols request: %w", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch symbols: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch symbols: status %d: %s", resp.StatusCode, msg)
	}

	var sr symbolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode symbols response: %w", err)
	}
	index := make(map[string]string, len(sr.Symbols))
	for _, sym := range sr.Symbols {
		if sym.Name != "" {
			index[sym.Name] = sym.ID
		}
	}
	return index, nil
}

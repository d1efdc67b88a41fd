package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
)

// ChromaStore implements domain.VectorStore against a Chroma REST server.
// The collection is created lazily on first use and its identifier cached
// for the lifetime of the store.
type ChromaStore struct {
	baseURL    string
	collection string
	http       http.Client

	collectionID string
}

// NewChromaStore creates a store for the configured Chroma endpoint.
func NewChromaStore(cfg config.StoreConfig) *ChromaStore {
	return &ChromaStore{
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
	}
}

// Upsert writes or overwrites one document. Re-upserting the same id is
// idempotent on the server side.
func (s *ChromaStore) Upsert(ctx context.Context, id string, vector []float32, document string, metadata map[string]any) error {
	collectionID, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"ids":        []string{id},
		"embeddings": [][]float32{vector},
		"documents":  []string{document},
		"metadatas":  []map[string]any{metadata},
	}

	path := fmt.Sprintf("/api/v1/collections/%s/upsert", collectionID)
	if _, postErr := s.post(ctx, path, payload); postErr != nil {
		return fmt.Errorf("vectorstore: upsert %q: %w", id, postErr)
	}
	return nil
}

// Query returns up to limit matches ranked by distance.
func (s *ChromaStore) Query(ctx context.Context, vector []float32, filters map[string]any, limit int) ([]domain.QueryMatch, error) {
	collectionID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        limit,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	if len(filters) > 0 {
		payload["where"] = filters
	}

	path := fmt.Sprintf("/api/v1/collections/%s/query", collectionID)
	respBody, postErr := s.post(ctx, path, payload)
	if postErr != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", postErr)
	}

	var result struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if unmarshalErr := json.Unmarshal(respBody, &result); unmarshalErr != nil {
		return nil, fmt.Errorf("vectorstore: unmarshal query response: %w", unmarshalErr)
	}
	if len(result.IDs) == 0 {
		return nil, nil
	}

	matches := make([]domain.QueryMatch, 0, len(result.IDs[0]))
	for i, id := range result.IDs[0] {
		match := domain.QueryMatch{ID: id}
		if len(result.Documents) > 0 && i < len(result.Documents[0]) {
			match.Document = result.Documents[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			match.Metadata = result.Metadatas[0][i]
		}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			match.Distance = result.Distances[0][i]
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// ensureCollection gets or creates the configured collection and caches its
// identifier.
func (s *ChromaStore) ensureCollection(ctx context.Context) (string, error) {
	if s.collectionID != "" {
		return s.collectionID, nil
	}

	payload := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}
	respBody, err := s.post(ctx, "/api/v1/collections", payload)
	if err != nil {
		return "", fmt.Errorf("vectorstore: get or create collection %q: %w", s.collection, err)
	}

	var result struct {
		ID string `json:"id"`
	}
	if unmarshalErr := json.Unmarshal(respBody, &result); unmarshalErr != nil {
		return "", fmt.Errorf("vectorstore: unmarshal collection response: %w", unmarshalErr)
	}
	if result.ID == "" {
		return "", fmt.Errorf("vectorstore: server returned no id for collection %q", s.collection)
	}

	s.collectionID = result.ID
	return s.collectionID, nil
}

func (s *ChromaStore) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

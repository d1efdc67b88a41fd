package domain

import "context"

// Embedder converts text into a vector representation. Implementations are a
// small closed set of variants (ollama, openai) selected once at
// configuration time.
type Embedder interface {
	// Name returns the strategy identifier (e.g. "ollama", "openai").
	Name() string

	// Embed computes the vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QueryMatch is one ranked result from a vector store query.
type QueryMatch struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
}

// VectorStore persists vectors keyed by the same stable identifiers as the
// content index, enabling idempotent upserts.
type VectorStore interface {
	// Upsert writes or overwrites one document with its vector and metadata.
	Upsert(ctx context.Context, id string, vector []float32, document string, metadata map[string]any) error

	// Query returns up to limit matches ranked by distance, optionally
	// filtered by metadata equality.
	Query(ctx context.Context, vector []float32, filters map[string]any, limit int) ([]QueryMatch, error)
}

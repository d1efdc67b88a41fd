// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"
	"errors"

	"github.com/rios0rios0/terradex/domain"
)

// ---------------------------------------------------------------------------
// SpyGitRepository
// ---------------------------------------------------------------------------

// SpyGitRepository implements domain.GitRepository as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyGitRepository struct {
	// --- identity ---
	RemoteURL string
	TreeRoot  string

	// --- Checkout ---
	CheckoutErr error
	// spy: refs that were checked out, in order
	CheckedOut []string

	// --- Tags ---
	TagList []string
	TagsErr error

	// --- DefaultBranch ---
	Branch           string
	DefaultBranchErr error
}

var _ domain.GitRepository = (*SpyGitRepository)(nil)

func (r *SpyGitRepository) URL() string  { return r.RemoteURL }
func (r *SpyGitRepository) Root() string { return r.TreeRoot }

func (r *SpyGitRepository) Checkout(ref string) error {
	r.CheckedOut = append(r.CheckedOut, ref)
	return r.CheckoutErr
}

func (r *SpyGitRepository) Tags() ([]string, error) {
	return r.TagList, r.TagsErr
}

func (r *SpyGitRepository) DefaultBranch() (string, error) {
	if r.DefaultBranchErr != nil {
		return "", r.DefaultBranchErr
	}
	return r.Branch, nil
}

// ---------------------------------------------------------------------------
// SpyGitClient
// ---------------------------------------------------------------------------

// SpyGitClient implements domain.GitClient backed by pre-built repository
// doubles keyed by name.
type SpyGitClient struct {
	// Repositories maps the configured name to the handle FetchOrClone returns.
	Repositories map[string]*SpyGitRepository
	FetchErr     error

	// spy: calls received
	FetchedURLs []string
	Removed     []string
}

var _ domain.GitClient = (*SpyGitClient)(nil)

func (c *SpyGitClient) FetchOrClone(_ context.Context, url, name string) (domain.GitRepository, error) {
	c.FetchedURLs = append(c.FetchedURLs, url)
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	if repo, ok := c.Repositories[name]; ok {
		return repo, nil
	}
	return nil, errors.New("no repository double configured for " + name)
}

func (c *SpyGitClient) Remove(repo domain.GitRepository) error {
	c.Removed = append(c.Removed, repo.URL())
	return nil
}

// ---------------------------------------------------------------------------
// StubEmbedder
// ---------------------------------------------------------------------------

// StubEmbedder implements domain.Embedder with a fixed vector.
type StubEmbedder struct {
	Vector   []float32
	EmbedErr error

	// spy: texts that were embedded
	Texts []string
}

var _ domain.Embedder = (*StubEmbedder)(nil)

func (e *StubEmbedder) Name() string { return "stub" }

func (e *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.Texts = append(e.Texts, text)
	if e.EmbedErr != nil {
		return nil, e.EmbedErr
	}
	return e.Vector, nil
}

// ---------------------------------------------------------------------------
// SpyVectorStore
// ---------------------------------------------------------------------------

// UpsertCall records a single invocation of Upsert.
type UpsertCall struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]any
}

// SpyVectorStore implements domain.VectorStore as a configurable spy.
type SpyVectorStore struct {
	UpsertErr error
	Matches   []domain.QueryMatch
	QueryErr  error

	// spy: calls received
	Upserts []UpsertCall
	Queries [][]float32
}

var _ domain.VectorStore = (*SpyVectorStore)(nil)

func (s *SpyVectorStore) Upsert(_ context.Context, id string, vector []float32, document string, metadata map[string]any) error {
	s.Upserts = append(s.Upserts, UpsertCall{ID: id, Vector: vector, Document: document, Metadata: metadata})
	return s.UpsertErr
}

func (s *SpyVectorStore) Query(_ context.Context, vector []float32, _ map[string]any, _ int) ([]domain.QueryMatch, error) {
	s.Queries = append(s.Queries, vector)
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	return s.Matches, nil
}

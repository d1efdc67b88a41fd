package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/domain"
	testdoubles "github.com/rios0rios0/terradex/test"
)

func TestPublish(t *testing.T) {
	t.Parallel()

	t.Run("should embed document and upsert with metadata", func(t *testing.T) {
		t.Parallel()

		// given
		embedder := &testdoubles.StubEmbedder{Vector: []float32{0.1, 0.2}}
		store := &testdoubles.SpyVectorStore{}
		publisher := application.NewPublisher(embedder, store)
		summary := domain.ModuleSummary{
			Repository: "https://github.com/acme/modules.git",
			Ref:        "main",
			Path:       "modules/vpc",
			Providers:  []domain.ProviderRef{{Name: "AWS"}},
		}

		// when
		err := publisher.Publish(context.Background(), "abc123", summary)

		// then
		require.NoError(t, err)
		require.Len(t, store.Upserts, 1)
		call := store.Upserts[0]
		assert.Equal(t, "abc123", call.ID)
		assert.Equal(t, []float32{0.1, 0.2}, call.Vector)
		assert.Equal(t, "https://github.com/acme/modules.git", call.Metadata["repository"])
		assert.Equal(t, "main", call.Metadata["ref"])
		assert.Equal(t, "modules/vpc", call.Metadata["path"])
		assert.Equal(t, "aws", call.Metadata["provider"])
	})

	t.Run("should fail when embedding fails", func(t *testing.T) {
		t.Parallel()

		// given
		embedder := &testdoubles.StubEmbedder{EmbedErr: errors.New("model not loaded")}
		store := &testdoubles.SpyVectorStore{}
		publisher := application.NewPublisher(embedder, store)

		// when
		err := publisher.Publish(context.Background(), "abc123", domain.ModuleSummary{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to embed")
		assert.Empty(t, store.Upserts)
	})

	t.Run("should fail when upsert fails", func(t *testing.T) {
		t.Parallel()

		// given
		embedder := &testdoubles.StubEmbedder{Vector: []float32{0.1}}
		store := &testdoubles.SpyVectorStore{UpsertErr: errors.New("collection gone")}
		publisher := application.NewPublisher(embedder, store)

		// when
		err := publisher.Publish(context.Background(), "abc123", domain.ModuleSummary{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert")
	})
}

func TestSearchSemantic(t *testing.T) {
	t.Parallel()

	t.Run("should embed query and return store matches", func(t *testing.T) {
		t.Parallel()

		// given
		embedder := &testdoubles.StubEmbedder{Vector: []float32{0.5}}
		store := &testdoubles.SpyVectorStore{
			Matches: []domain.QueryMatch{{ID: "abc123", Distance: 0.12}},
		}
		publisher := application.NewPublisher(embedder, store)

		// when
		matches, err := publisher.Search(context.Background(), "vpc with nat gateway", nil, 5)

		// then
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "abc123", matches[0].ID)
		assert.Equal(t, []string{"vpc with nat gateway"}, embedder.Texts)
	})
}

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	t.Run("should render identity inputs outputs and sub-modules", func(t *testing.T) {
		t.Parallel()

		// given
		summary := domain.ModuleSummary{
			Repository:  "https://github.com/acme/modules.git",
			Ref:         "v1.0.0",
			Path:        "modules/vpc",
			Description: "Creates a VPC.",
			Providers:   []domain.ProviderRef{{Name: "aws", VersionConstraint: "~> 5.0"}},
			Variables: []domain.Variable{
				{Name: "region", Type: "string", Description: "Deployment region", Required: true},
			},
			Outputs: []domain.Output{{Name: "vpc_id", Description: "Identifier of the VPC"}},
			Modules: []domain.ModuleCall{{Name: "subnets", Source: "./modules/subnets"}},
		}

		// when
		document := application.BuildDocument(summary)

		// then
		assert.Contains(t, document, "Terraform module modules/vpc at https://github.com/acme/modules.git (v1.0.0)")
		assert.Contains(t, document, "Creates a VPC.")
		assert.Contains(t, document, "Providers: aws (~> 5.0)")
		assert.Contains(t, document, "Input region (string) [required]: Deployment region")
		assert.Contains(t, document, "Output vpc_id: Identifier of the VPC")
		assert.Contains(t, document, "Uses module subnets from ./modules/subnets")
	})

	t.Run("should name the repository root module", func(t *testing.T) {
		t.Parallel()

		// given
		summary := domain.ModuleSummary{
			Repository: "https://github.com/acme/modules.git",
			Ref:        "main",
			Path:       ".",
		}

		// when
		document := application.BuildDocument(summary)

		// then
		assert.Contains(t, document, "Terraform module root module at")
	})
}

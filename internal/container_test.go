package internal_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/internal"
)

func TestBuildContainer(t *testing.T) {
	t.Parallel()

	newConfig := func(t *testing.T) *config.Config {
		t.Helper()
		tmpDir := t.TempDir()
		return &config.Config{
			Storage: config.StorageConfig{
				WorkspacesDir: filepath.Join(tmpDir, "workspaces"),
				SummariesDir:  filepath.Join(tmpDir, "summaries"),
				IndexFile:     filepath.Join(tmpDir, "summaries", "index.json"),
			},
			Repositories: []config.RepositoryConfig{
				{URL: "https://github.com/acme/modules.git", Branches: []string{"main"}},
			},
		}
	}

	t.Run("should wire the ingest service", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := newConfig(t)

		// when
		container, err := internal.BuildContainer(cfg)

		// then
		require.NoError(t, err)
		invokeErr := container.Invoke(func(service *application.IngestService) {
			assert.NotNil(t, service)
		})
		require.NoError(t, invokeErr)
	})

	t.Run("should provide a nil publisher when semantic indexing is disabled", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := newConfig(t)

		// when
		container, err := internal.BuildContainer(cfg)

		// then
		require.NoError(t, err)
		invokeErr := container.Invoke(func(publisher *application.Publisher) {
			assert.Nil(t, publisher)
		})
		require.NoError(t, invokeErr)
	})

	t.Run("should build the publisher when semantic indexing is enabled", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := newConfig(t)
		cfg.Semantic = config.SemanticConfig{
			Enabled:   true,
			Embedding: config.EmbeddingConfig{Provider: "ollama"},
			Store:     config.StoreConfig{BaseURL: "http://localhost:8000", Collection: "terradex"},
		}

		// when
		container, err := internal.BuildContainer(cfg)

		// then
		require.NoError(t, err)
		invokeErr := container.Invoke(func(publisher *application.Publisher) {
			assert.NotNil(t, publisher)
		})
		require.NoError(t, invokeErr)
	})
}

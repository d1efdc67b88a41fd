package internal

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/infrastructure/embedding"
	"github.com/rios0rios0/terradex/infrastructure/gittransport"
	"github.com/rios0rios0/terradex/infrastructure/index"
	"github.com/rios0rios0/terradex/infrastructure/vectorstore"
)

// BuildContainer wires all components for one process lifetime. Constructors
// are registered bottom-up: infrastructure first, then the application
// services that consume them.
func BuildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		gittransport.NewClient,
		index.New,
		newPublisher,
		application.NewIngestService,
		application.NewScheduler,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// newPublisher builds the semantic publisher, or nil when semantic
// publication is disabled; the ingest service treats nil as "skip".
func newPublisher(cfg *config.Config) (*application.Publisher, error) {
	if !cfg.Semantic.Enabled {
		return nil, nil
	}

	embedder, err := embedding.NewEmbedder(cfg.Semantic.Embedding)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewChromaStore(cfg.Semantic.Store)
	return application.NewPublisher(embedder, store), nil
}

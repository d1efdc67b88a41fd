package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rios0rios0/terradex/domain"
)

// Publisher converts summaries into embeddable documents and upserts them
// into the vector store under the same content-addressed identifiers as the
// content index.
type Publisher struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

// NewPublisher creates a publisher from the selected embedding strategy and
// vector store client.
func NewPublisher(embedder domain.Embedder, store domain.VectorStore) *Publisher {
	return &Publisher{embedder: embedder, store: store}
}

// Publish embeds the summary document and upserts it with its filterable
// metadata. Re-publishing the same id overwrites the previous vector.
func (p *Publisher) Publish(ctx context.Context, id string, summary domain.ModuleSummary) error {
	document := BuildDocument(summary)

	vector, err := p.embedder.Embed(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to embed summary: %w", err)
	}

	metadata := map[string]any{
		"repository": summary.Repository,
		"ref":        summary.Ref,
		"path":       summary.Path,
	}
	if len(summary.Providers) > 0 {
		metadata["provider"] = strings.ToLower(summary.Providers[0].Name)
	}

	if upsertErr := p.store.Upsert(ctx, id, vector, document, metadata); upsertErr != nil {
		return fmt.Errorf("failed to upsert vector: %w", upsertErr)
	}
	return nil
}

// Search embeds the query text and returns ranked matches from the store.
func (p *Publisher) Search(ctx context.Context, query string, filters map[string]any, limit int) ([]domain.QueryMatch, error) {
	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := p.store.Query(ctx, vector, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	return matches, nil
}

// BuildDocument renders the embeddable text for one summary: identity line,
// description, then the declaration inventory in a stable order.
func BuildDocument(summary domain.ModuleSummary) string {
	var sb strings.Builder

	moduleName := summary.Path
	if moduleName == "." {
		moduleName = "root module"
	}
	fmt.Fprintf(&sb, "Terraform module %s at %s (%s)\n", moduleName, summary.Repository, summary.Ref)

	if summary.Description != "" {
		sb.WriteString(summary.Description)
		sb.WriteString("\n")
	}

	if len(summary.Providers) > 0 {
		sb.WriteString("Providers:")
		for _, p := range summary.Providers {
			sb.WriteString(" " + p.Name)
			if p.VersionConstraint != "" {
				sb.WriteString(" (" + p.VersionConstraint + ")")
			}
		}
		sb.WriteString("\n")
	}

	for _, v := range summary.Variables {
		fmt.Fprintf(&sb, "Input %s", v.Name)
		if v.Type != "" {
			fmt.Fprintf(&sb, " (%s)", v.Type)
		}
		if v.Required {
			sb.WriteString(" [required]")
		}
		if v.Description != "" {
			sb.WriteString(": " + v.Description)
		}
		sb.WriteString("\n")
	}

	for _, o := range summary.Outputs {
		fmt.Fprintf(&sb, "Output %s", o.Name)
		if o.Description != "" {
			sb.WriteString(": " + o.Description)
		}
		sb.WriteString("\n")
	}

	for _, m := range summary.Modules {
		fmt.Fprintf(&sb, "Uses module %s from %s\n", m.Name, m.Source)
	}

	return sb.String()
}

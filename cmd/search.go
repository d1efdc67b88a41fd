package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/domain"
	"github.com/rios0rios0/terradex/infrastructure/index"
)

var (
	searchProvider   string
	searchTag        string
	searchRepository string
	searchLimit      int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed modules by metadata or semantic similarity",
	Long: `Without a query, filters the content index by provider, tag or
repository. With a query, embeds it and ranks modules by vector similarity
(requires semantic indexing to be enabled).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			return container.Invoke(func(publisher *application.Publisher) error {
				return semanticSearch(command, publisher, args[0])
			})
		}

		return container.Invoke(func(idx *index.Index) error {
			return metadataSearch(idx)
		})
	},
}

func semanticSearch(command *cobra.Command, publisher *application.Publisher, query string) error {
	if publisher == nil {
		return fmt.Errorf("semantic search requires semantic.enabled in the configuration")
	}

	filters := map[string]any{}
	if searchProvider != "" {
		filters["provider"] = searchProvider
	}

	matches, err := publisher.Search(command.Context(), query, filters, searchLimit)
	if err != nil {
		return err
	}

	for _, match := range matches {
		fmt.Printf("%s  distance=%.4f\n", match.ID, match.Distance)
		if repo, ok := match.Metadata["repository"]; ok {
			fmt.Printf("  %v @ %v (%v)\n", repo, match.Metadata["ref"], match.Metadata["path"])
		}
	}
	fmt.Printf("%d matches\n", len(matches))
	return nil
}

func metadataSearch(idx *index.Index) error {
	var entries []domain.IndexEntry
	switch {
	case searchProvider != "":
		entries = idx.SearchByProvider(searchProvider)
	case searchTag != "":
		entries = idx.SearchByTag(searchTag)
	case searchRepository != "":
		entries = idx.SearchByRepository(searchRepository)
	default:
		entries = idx.All()
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s @ %s (%s)\n", entry.ID[:12], entry.Repository, entry.Ref, entry.Path)
	}
	fmt.Printf("%d entries\n", len(entries))
	return nil
}

func init() {
	searchCmd.Flags().StringVar(&searchProvider, "provider", "", "Filter by provider name")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "Filter by derived tag")
	searchCmd.Flags().StringVar(&searchRepository, "repository", "", "Filter by repository URL substring")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of semantic matches")
	rootCmd.AddCommand(searchCmd)
}

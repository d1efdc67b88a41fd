package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run a full ingestion over all configured repositories",
	Long: `Fetches every configured repository, resolves its refs (branches and
version tags), discovers module roots, extracts declarations and writes the
resulting summaries to the content index. Failures of individual files, module
roots, refs or repositories are logged and skipped; the run always completes.`,
	RunE: func(command *cobra.Command, _ []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}

		return container.Invoke(func(service *application.IngestService, cfg *config.Config) error {
			_, ingestErr := service.Ingest(command.Context(), cfg)
			return ingestErr
		})
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/terradex/application"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <repository-url>",
	Short: "Summarize a single repository without touching the index",
	Long: `Fetches one ad-hoc repository, summarizes every module root on its
default branch and prints the summaries as JSON. Nothing is persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}

		return container.Invoke(func(service *application.IngestService) error {
			summaries, sumErr := service.SummarizeRepository(command.Context(), args[0])
			if sumErr != nil {
				return sumErr
			}

			out, marshalErr := json.MarshalIndent(summaries, "", "  ")
			if marshalErr != nil {
				return marshalErr
			}
			fmt.Println(string(out))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

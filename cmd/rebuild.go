package cmd

import (
	"github.com/spf13/cobra"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/terradex/infrastructure/index"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the content index from persisted summaries",
	Long: `Scans every persisted summary file and reconstructs the index from
scratch, recomputing each content-addressed identifier. Use this to recover a
lost or stale index file.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}

		return container.Invoke(func(idx *index.Index) error {
			count, rebuildErr := idx.RebuildFromStorage()
			if rebuildErr != nil {
				return rebuildErr
			}
			logger.Infof("Rebuilt index with %d entries", count)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

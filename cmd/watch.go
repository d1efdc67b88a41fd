package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/terradex/application"
	"github.com/rios0rios0/terradex/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run ingestion periodically until interrupted",
	Long: `Runs a full ingestion immediately and then again on the configured
refresh interval. Each run is independent and idempotent; an interrupt stops
scheduling further runs without corrupting persisted state.`,
	RunE: func(command *cobra.Command, _ []string) error {
		container, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return container.Invoke(func(scheduler *application.Scheduler, cfg *config.Config) error {
			return scheduler.Run(ctx, cfg)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

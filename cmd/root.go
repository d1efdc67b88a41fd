package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/internal"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "terradex",
	Short: "Terraform module metadata indexer with semantic search",
	Long: `A tool that ingests Terraform module repositories, extracts structured
metadata (inputs, outputs, providers, sub-modules) from every module version,
and publishes it as a searchable content index plus optional vector embeddings.

This tool helps you keep an inventory of your infrastructure modules by:
- Scanning every configured repository across branches and version tags
- Discovering module roots recursively, including nested sub-modules
- Extracting declarations even from files the HCL grammar cannot fully parse
- Assigning each module version a stable content-addressed identifier`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig resolves the config file path and loads it.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

// buildContainer loads the configuration and wires the DIG container.
func buildContainer() (*dig.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return internal.BuildContainer(cfg)
}

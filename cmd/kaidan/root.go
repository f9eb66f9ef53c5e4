package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/kaidan/internal/api"
	"github.com/jackzampolin/kaidan/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "kaidan",
	Short: "Question answering over digitized library books with cited sources",
	Long: `Kaidan answers free-text questions from passages in digitized books.

Each request runs a small pipeline:
  - Extract a structured search intent from the question
  - Retrieve matching passages from the digital library search API
  - Compose an answer grounded strictly in those passages, with citations`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.kaidan/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "kaidan home directory (default: ~/.kaidan)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

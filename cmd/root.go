package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configDir string
	quiet     bool
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "A CLI tool for curating collections from the archive.org catalog",
	Long: `Curio searches the archive.org catalog for configured categories of
material, scores each result for quality and relevance, filters out
low-engagement items and near-duplicates, and maintains a persistent,
human-editable CSV collection.

Categories and scoring rules live in a config directory (categories.yaml,
filters.yaml); repeated runs against the same catalog state are idempotent.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory containing categories.yaml and filters.yaml")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress progress messages)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (per-query detail)")
}

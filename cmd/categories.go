package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pcannon/curio/internal/config"
	"github.com/pcannon/curio/internal/curator"
)

var categoriesListFile string

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured categories and their search terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := config.LoadCategoriesFromDir(configDir, categoriesListFile)
		if err != nil {
			return err
		}

		for _, cat := range categories {
			fmt.Printf("📚 %s (%s)\n", cat.Name, strings.Join(cat.Mediatypes, ", "))

			if cat.Description != "" {
				fmt.Printf("   %s\n", cat.Description)
			}

			specs := curator.ExpandQueries(cat)
			fmt.Printf("   %d terms, %d queries:\n", len(cat.Terms), len(specs))

			for _, term := range cat.Terms {
				line := term.Name
				if term.Query != "" {
					line += fmt.Sprintf(" (query: %q)", term.Query)
				}

				if len(term.Mediatypes) > 0 {
					line += fmt.Sprintf(" [%s]", strings.Join(term.Mediatypes, ", "))
				}

				fmt.Printf("   • %s\n", line)
			}

			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)

	categoriesCmd.Flags().StringVar(&categoriesListFile, "categories-file", "", "alternate categories file (relative to --config-dir or absolute)")
}

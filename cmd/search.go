package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pcannon/curio/internal/collection"
	"github.com/pcannon/curio/internal/curator"
)

var (
	searchCategory   string
	searchMaxResults int
	searchShowAll    bool
	searchDetails    bool
	searchNoMetadata bool
	searchWorkers    int
	categoriesFile   string
	exportFormat     string
	exportOutput     string
	exportAppend     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog and score results without saving",
	Long: `Run the curation pipeline for the configured categories and print the
scored results. Nothing is written unless --export is given.

Examples:
  curio search
  curio search --category beat-generation --details
  curio search --show-all --max-results 100
  curio search --export csv --output results.csv
  curio search --export csv --output results.csv --append`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict the run to one category")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 50, "maximum results per query")
	searchCmd.Flags().BoolVar(&searchShowAll, "show-all", false, "include filtered-out items in the output")
	searchCmd.Flags().BoolVar(&searchDetails, "details", false, "show per-item scoring reasons")
	searchCmd.Flags().BoolVar(&searchNoMetadata, "no-metadata", false, "skip the per-item metadata fetch (faster, less accurate page counts)")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 4, "number of parallel search workers")
	searchCmd.Flags().StringVar(&categoriesFile, "categories-file", "", "alternate categories file (relative to --config-dir or absolute)")
	searchCmd.Flags().StringVar(&exportFormat, "export", "", "export results (csv, json)")
	searchCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "export destination file (default stdout for json, required for csv --append)")
	searchCmd.Flags().BoolVar(&exportAppend, "append", false, "merge exported csv rows into an existing file instead of replacing it")
}

func runSearch(cmd *cobra.Command, args []string) error {
	result, filters, err := runPipeline(cmd.Context(), pipelineParams{
		category:       searchCategory,
		categoriesFile: categoriesFile,
		maxResults:     searchMaxResults,
		workers:        searchWorkers,
		metadata:       !searchNoMetadata,
	})
	if err != nil {
		return err
	}

	items := result.Items
	if !searchShowAll {
		items = result.Included()
	}

	items = curator.Deduplicate(items)
	items = curator.ApplyMediatypeLimits(items, filters.MediatypeLimits)

	switch strings.ToLower(exportFormat) {
	case "":
		printResultsTable(items, result)
	case "json":
		if err := exportJSON(items); err != nil {
			return err
		}
	case "csv":
		if err := exportCSV(items); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export format: %s", exportFormat)
	}

	return nil
}

func printResultsTable(items []curator.Item, result curator.RunResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Score", "Title", "Type", "Term", "Identifier"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, item := range items {
		status := "PASS"
		if !item.Included() {
			status = "FAIL"
		}

		title := item.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		table.Append([]string{
			status,
			strconv.Itoa(item.Confidence.Score),
			title,
			item.Mediatype,
			item.SearchTerm,
			item.Identifier,
		})
	}

	table.Render()

	if searchDetails {
		fmt.Println()

		for _, item := range items {
			fmt.Printf("📖 %s (%d)\n", item.Title, item.Confidence.Score)

			for _, reason := range item.Confidence.Reasons {
				fmt.Printf("   • %s\n", reason)
			}
		}
	}

	passing := 0
	for _, item := range items {
		if item.Included() {
			passing++
		}
	}

	fmt.Printf("\n📊 %d/%d items passing", passing, len(items))

	if result.Summary.Failed > 0 {
		fmt.Printf(" (%d/%d queries failed)", result.Summary.Failed, result.Summary.Queries)
	}

	fmt.Println()
}

func exportJSON(items []curator.Item) error {
	out := os.Stdout

	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(items)
}

func exportCSV(items []curator.Item) error {
	if exportOutput == "" {
		return fmt.Errorf("--export csv requires --output")
	}

	batch := make([]collection.Row, 0, len(items))
	for _, item := range items {
		batch = append(batch, collection.FromItem(item))
	}

	var existing []collection.Row

	if exportAppend {
		var err error

		existing, err = collection.Read(exportOutput)
		if err != nil {
			return err
		}
	}

	merged, stats := collection.Merge(existing, batch, !exportAppend)

	if err := collection.Write(exportOutput, merged); err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("✅ Wrote %d rows to %s (%d added, %d replaced, %d skipped)\n",
			len(merged), exportOutput, stats.Added, stats.Replaced, stats.Skipped)
	}

	return nil
}

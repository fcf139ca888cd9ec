package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcannon/curio/internal/collection"
	"github.com/pcannon/curio/internal/curator"
)

var (
	curateCollection    string
	curateOverwrite     bool
	curateDryRun        bool
	curateMinConfidence int
	curateCategory      string
	curateMaxResults    int
	curateCategories    string
	curateNoMetadata    bool
	curateWorkers       int
)

// curateCmd represents the curate command
var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Run the pipeline and merge passing items into the collection",
	Long: `Run the curation pipeline and fold the passing items into the
collection CSV. Existing rows keep their positions; a new duplicate replaces
a row in place only when it scores strictly higher, so re-running against
unchanged catalog state leaves the file untouched.

Examples:
  curio curate
  curio curate --collection library/collection.csv
  curio curate --category beat-generation --dry-run
  curio curate --overwrite --min-confidence 75`,
	RunE: runCurate,
}

func init() {
	rootCmd.AddCommand(curateCmd)

	curateCmd.Flags().StringVar(&curateCollection, "collection", "output/collection.csv", "collection CSV file to merge into")
	curateCmd.Flags().BoolVar(&curateOverwrite, "overwrite", false, "replace the collection with this run's results instead of merging")
	curateCmd.Flags().BoolVar(&curateDryRun, "dry-run", false, "report what would change without writing")
	curateCmd.Flags().IntVar(&curateMinConfidence, "min-confidence", 0, "override the configured confidence threshold")
	curateCmd.Flags().StringVar(&curateCategory, "category", "", "restrict the run to one category")
	curateCmd.Flags().IntVar(&curateMaxResults, "max-results", 50, "maximum results per query")
	curateCmd.Flags().StringVar(&curateCategories, "categories-file", "", "alternate categories file (relative to --config-dir or absolute)")
	curateCmd.Flags().BoolVar(&curateNoMetadata, "no-metadata", false, "skip the per-item metadata fetch")
	curateCmd.Flags().IntVar(&curateWorkers, "workers", 4, "number of parallel search workers")
}

func runCurate(cmd *cobra.Command, args []string) error {
	result, filters, err := runPipeline(cmd.Context(), pipelineParams{
		category:       curateCategory,
		categoriesFile: curateCategories,
		maxResults:     curateMaxResults,
		workers:        curateWorkers,
		metadata:       !curateNoMetadata,
		minConfidence:  curateMinConfidence,
	})
	if err != nil {
		return err
	}

	items := curator.Deduplicate(result.Included())
	items = curator.ApplyMediatypeLimits(items, filters.MediatypeLimits)

	batch := make([]collection.Row, 0, len(items))
	for _, item := range items {
		batch = append(batch, collection.FromItem(item))
	}

	existing, err := collection.Read(curateCollection)
	if err != nil {
		return err
	}

	merged, stats := collection.Merge(existing, batch, curateOverwrite)

	if curateDryRun {
		fmt.Printf("🔍 Dry run: %d added, %d replaced, %d skipped (collection would hold %d rows)\n",
			stats.Added, stats.Replaced, stats.Skipped, len(merged))

		return nil
	}

	if err := collection.Write(curateCollection, merged); err != nil {
		return err
	}

	fmt.Printf("✅ Collection %s: %d rows (%d added, %d replaced, %d skipped)\n",
		curateCollection, len(merged), stats.Added, stats.Replaced, stats.Skipped)

	if result.Summary.Failed > 0 {
		fmt.Printf("⚠️  %d/%d queries failed; results are partial\n", result.Summary.Failed, result.Summary.Queries)
	}

	return nil
}

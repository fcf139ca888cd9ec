package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcannon/curio/internal/collection"
	"github.com/pcannon/curio/pkg/archive"
)

var (
	publishCollection string
	publishList       string
	publishParent     string
	publishDryRun     bool
	publishRateLimit  time.Duration
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Add collection items to an archive.org list",
	Long: `Add every item in the collection CSV to an archive.org simplelist via
the metadata write API. Items already on the list are skipped, so repeated
publishes are safe.

Credentials are read from IA_ACCESS_KEY_ID and IA_SECRET_ACCESS_KEY; the list
target from IA_LIST_PARENT and IA_LIST_NAME unless overridden by flags.

Examples:
  curio publish
  curio publish --collection library/collection.csv --dry-run
  curio publish --parent @someuser --list culture-library`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&publishCollection, "collection", "output/collection.csv", "collection CSV file to publish")
	publishCmd.Flags().StringVar(&publishList, "list", "", "list name (overrides IA_LIST_NAME)")
	publishCmd.Flags().StringVar(&publishParent, "parent", "", "list owner, e.g. @username (overrides IA_LIST_PARENT)")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "report what would be published without writing")
	publishCmd.Flags().DurationVar(&publishRateLimit, "rate-limit", time.Second, "pause between list writes")
}

func runPublish(cmd *cobra.Command, args []string) error {
	rows, err := collection.Read(publishCollection)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Printf("⚠️  Collection %s is empty, nothing to publish\n", publishCollection)
		return nil
	}

	cfg, err := archive.ListConfigFromEnv()
	if err != nil && !publishDryRun {
		return err
	}

	if publishList != "" {
		cfg.Name = publishList
	}

	if publishParent != "" {
		cfg.Parent = publishParent
	}

	if publishDryRun {
		fmt.Printf("🔍 Dry run: would publish %d items to %s/lists/%s\n", len(rows), cfg.Parent, cfg.Name)

		for _, row := range rows {
			fmt.Printf("   • %s (%s, score %d)\n", row.Title, row.Identifier, row.Score)
		}

		return nil
	}

	ctx := cmd.Context()
	client := archive.New(archive.WithVerbose(verbose))

	members, err := client.ListMembers(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fetch current list members: %w", err)
	}

	published, skipped, failed := 0, 0, 0

	for i, row := range rows {
		if members[row.Identifier] {
			skipped++
			continue
		}

		if i > 0 && publishRateLimit > 0 {
			select {
			case <-time.After(publishRateLimit):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		notes := map[string]any{
			"search_term":      row.SearchTerm,
			"confidence_score": row.Score,
			"added_by":         "curio",
		}

		if err := client.AddToList(ctx, row.Identifier, cfg, notes); err != nil {
			failed++

			fmt.Printf("❌ %s: %v\n", row.Identifier, err)

			continue
		}

		published++

		if !quiet {
			fmt.Printf("✅ %s (%s)\n", row.Title, row.Identifier)
		}
	}

	fmt.Printf("\n📊 Published %d items (%d already listed, %d failed)\n", published, skipped, failed)
	fmt.Printf("🔗 %s\n", cfg.URL())

	if failed > 0 {
		return fmt.Errorf("%d of %d items failed to publish", failed, len(rows))
	}

	return nil
}

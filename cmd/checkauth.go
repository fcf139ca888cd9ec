package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcannon/curio/pkg/archive"
)

// checkAuthCmd represents the check-auth command
var checkAuthCmd = &cobra.Command{
	Use:   "check-auth",
	Short: "Verify archive.org credentials before publishing",
	Long: `Verify that the credentials and list target in the environment
(IA_ACCESS_KEY_ID, IA_SECRET_ACCESS_KEY, IA_LIST_PARENT, IA_LIST_NAME) are
complete and that the keys authenticate, without writing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := archive.ListConfigFromEnv()
		if err != nil {
			return err
		}

		client := archive.New(archive.WithVerbose(verbose))

		username, err := client.CheckAuth(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		fmt.Printf("✅ Authenticated as %s\n", username)
		fmt.Printf("🔗 Target list: %s\n", cfg.URL())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkAuthCmd)
}

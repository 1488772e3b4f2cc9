package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded focus samples",
	Long: `Delete all recorded focus samples. Usage access and the store's API level
are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This will delete all tracking data. Are you sure?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, repo, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database cleared successfully")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
}

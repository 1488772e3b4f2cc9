package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/appusage/internal/access"
)

var accessYes bool

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Manage usage access",
	Long: `Manage usage access: the recorded permission that lets appusage read
per-application usage statistics. Granting is always an explicit step.`,
}

var accessGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Allow reading usage statistics",
	Example: `  appusage access grant
  appusage access grant --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !accessYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Allow appusage to read per-application usage statistics?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Usage access unchanged")
			return nil
		}
		return setAccessMode(cmd, access.ModeAllowed)
	},
}

var accessRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Stop allowing reads of usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAccessMode(cmd, access.ModeIgnored)
	},
}

var accessStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded usage access mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, repo, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		id := access.CurrentIdentity(cfg.Access.Package)
		mode, err := repo.CheckOpNoThrow(cmd.Context(), access.OpGetUsageStats, id.UID, id.Package)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Usage access for %s (uid %d): %s\n", id.Package, id.UID, mode)
		return nil
	},
}

func init() {
	accessGrantCmd.Flags().BoolVarP(&accessYes, "yes", "y", false, "grant without asking")

	accessCmd.AddCommand(accessGrantCmd)
	accessCmd.AddCommand(accessRevokeCmd)
	accessCmd.AddCommand(accessStatusCmd)
}

func setAccessMode(cmd *cobra.Command, mode access.Mode) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id := access.CurrentIdentity(cfg.Access.Package)
	if err := repo.SetMode(cmd.Context(), access.OpGetUsageStats, id.UID, id.Package, mode); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Usage access for %s: %s\n", id.Package, mode)
	return nil
}

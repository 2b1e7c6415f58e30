package cli

import (
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload nginx",
	Long: `Validate the full configuration set and reload nginx.

The syntax check runs first; a broken configuration is never pushed to
the running process.

Examples:
  sitectl reload`,
	RunE: runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	_, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	output.Info("Testing configuration...")
	if err := tx.Check(cmd.Context()); err != nil {
		return errors.Rejected("", err)
	}

	output.Info("Reloading nginx...")
	if err := tx.Reload(cmd.Context()); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "reloaded": true},
		"nginx reloaded",
	)
}

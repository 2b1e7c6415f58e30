package cli

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the full nginx configuration",
	Long: `Run the nginx syntax check over the full configuration set without
changing anything.

Examples:
  sitectl check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	if err := tx.Check(cmd.Context()); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{"success": true, "valid": true},
		"Configuration is valid",
	)
}

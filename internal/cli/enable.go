package cli

import (
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <domain>",
	Short: "Enable a site",
	Long: `Enable a site by linking its artifact into sites-enabled.

The full configuration set is validated before the reload; a rejection
unlinks the site again.

Examples:
  sitectl enable example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runEnable,
}

func init() {
	enableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload nginx")

	rootCmd.AddCommand(enableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	output.Info("Enabling site...")
	if err := tx.Enable(cmd.Context(), domain, !noReload); err != nil {
		return err
	}

	if site, exists := cfg.Sites[domain]; exists {
		site.Enabled = true
		if err := saveConfig(cfg); err != nil {
			output.Warn("Site enabled but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(domain, "enabled"), "Site %s enabled", domain)
}

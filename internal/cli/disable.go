package cli

import (
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable <domain>",
	Short: "Disable a site",
	Long: `Disable a site by removing its symlink from sites-enabled.

The rendered artifact stays in sites-available so the site can be
re-enabled without re-rendering.

Examples:
  sitectl disable example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runDisable,
}

func init() {
	disableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload nginx")

	rootCmd.AddCommand(disableCmd)
}

func runDisable(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	output.Info("Disabling site...")
	if err := tx.Disable(cmd.Context(), domain, !noReload); err != nil {
		return err
	}

	if site, exists := cfg.Sites[domain]; exists {
		site.Enabled = false
		if err := saveConfig(cfg); err != nil {
			output.Warn("Site disabled but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(domain, "disabled"), "Site %s disabled", domain)
}

package cli

import (
	"strings"

	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	forceRemove bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <domain>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a site",
	Long: `Disable a site and delete its rendered artifact.

Examples:
  sitectl remove example.com
  sitectl rm example.com --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload nginx")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	if !forceRemove {
		output.Print("Are you sure you want to remove site '%s'? [y/N]: ", domain)
		answer, _ := deps.StdinReader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			output.Info("Removal cancelled")
			return nil
		}
	}

	output.Info("Removing site...")
	if err := tx.Remove(cmd.Context(), domain, !noReload); err != nil {
		return err
	}

	if _, exists := cfg.Sites[domain]; exists {
		delete(cfg.Sites, domain)
		if err := saveConfig(cfg); err != nil {
			output.Warn("Site removed but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(domain, "removed"), "Site %s removed", domain)
}

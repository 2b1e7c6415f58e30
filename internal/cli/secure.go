package cli

import (
	"fmt"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	secureEmail string
	secureRenew bool
)

var secureCmd = &cobra.Command{
	Use:   "secure <domain>",
	Short: "Enable TLS for an existing site",
	Long: `Issue a Let's Encrypt certificate for the domain and inject the TLS
directives into its artifact.

The augmented configuration is validated before the reload. A rejection
restores the previous artifact byte-for-byte and the site keeps serving
over plain HTTP.

Examples:
  sitectl secure example.com --email admin@example.com
  sitectl secure example.com --renew`,
	Args: cobra.ExactArgs(1),
	RunE: runSecure,
}

func init() {
	secureCmd.Flags().StringVarP(&secureEmail, "email", "e", "", "Email address for certificate issuance")
	secureCmd.Flags().BoolVar(&secureRenew, "renew", false, "Renew the existing certificate instead of issuing")
	secureCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload nginx")

	rootCmd.AddCommand(secureCmd)
}

func runSecure(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	if secureRenew {
		output.Info("Renewing certificate for %s...", domain)
		if err := tx.Renew(cmd.Context(), domain, !noReload); err != nil {
			return err
		}
		return outputResult(newSuccessResult(domain, "renewed"), "Certificate renewed for %s", domain)
	}

	email := secureEmail
	if email == "" {
		email = cfg.Email
	}
	if email == "" {
		return fmt.Errorf("--email is required (or set email in the config file)")
	}

	site, exists := cfg.Sites[domain]
	if !exists {
		return fmt.Errorf("site %s not found. Create it first with: sitectl add %s", domain, domain)
	}

	output.Info("Issuing certificate for %s...", domain)
	if err := tx.Secure(cmd.Context(), site, email, !noReload); err != nil {
		if errors.Is(err, errors.ErrRolledBack) {
			output.Warn("TLS augmentation rolled back, site stays on plain HTTP")
		}
		return err
	}

	if err := saveConfig(cfg); err != nil {
		output.Warn("TLS enabled but config save failed: %v", err)
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"success":   true,
			"domain":    domain,
			"cert_path": site.CertPath,
			"key_path":  site.KeyPath,
		})
	}

	output.Success("TLS enabled for %s", domain)
	output.Print("  Certificate: %s", site.CertPath)
	output.Print("  Private Key: %s", site.KeyPath)

	return nil
}

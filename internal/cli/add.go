package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	siteType   string
	siteRoot   string
	sitePort   int
	siteTarget string
	phpVersion string
	wwwPolicy  string
	withTLS    bool
	tlsEmail   string
	noReload   bool
)

var addCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Add a new site",
	Long: `Render a server block for the domain, validate it, and enable it.

Examples:
  sitectl add example.com --type static --root /var/www/html
  sitectl add example.com --type php --root /var/www/app --php 8.2
  sitectl add example.com --type proxy --port 3000
  sitectl add old.example.com --type redirect --target example.com
  sitectl add example.com --type static --root /var/www/html --www apex
  sitectl add example.com --type static --root /var/www/html --ssl --email admin@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&siteType, "type", "t", "static", "Site archetype (static, php, proxy, redirect)")
	addCmd.Flags().StringVarP(&siteRoot, "root", "r", "", "Document root path")
	addCmd.Flags().IntVarP(&sitePort, "port", "p", 0, "Upstream port (for proxy archetype)")
	addCmd.Flags().StringVar(&siteTarget, "target", "", "Destination domain (for redirect archetype)")
	addCmd.Flags().StringVar(&phpVersion, "php", "", "PHP-FPM version (e.g., 8.2)")
	addCmd.Flags().StringVar(&wwwPolicy, "www", "none", "WWW handling (none, apex, www)")
	addCmd.Flags().BoolVar(&withTLS, "ssl", false, "Issue a certificate and enable TLS (requires certbot)")
	addCmd.Flags().StringVar(&tlsEmail, "email", "", "Email address for certificate issuance")
	addCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload nginx")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	domain := args[0]

	if !config.IsValidArchetype(siteType) {
		return fmt.Errorf("invalid type: %s. Valid types: %s", siteType, strings.Join(config.ValidArchetypes(), ", "))
	}

	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	if _, exists := cfg.Sites[domain]; exists {
		return fmt.Errorf("site %s already exists", domain)
	}

	email := tlsEmail
	if email == "" {
		email = cfg.Email
	}
	if withTLS && email == "" {
		return fmt.Errorf("--email is required for --ssl (or set email in the config file)")
	}

	site := &config.Site{
		Domain:         domain,
		Archetype:      siteType,
		Root:           siteRoot,
		Port:           sitePort,
		Target:         siteTarget,
		RuntimeVersion: phpVersion,
		WWWPolicy:      config.WWWPolicy(wwwPolicy),
		Enabled:        true,
		CreatedAt:      time.Now(),
	}

	if site.RuntimeVersion == "" && site.Archetype == config.ArchetypePHP {
		site.RuntimeVersion = cfg.DefaultPHP
	}

	// Full field validation happens inside Commit; fail fast here so a
	// bad invocation never reaches the privilege check.
	if err := site.Validate(); err != nil {
		return err
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Rendering and validating configuration...")
	if err := tx.Commit(cmd.Context(), site, !noReload); err != nil {
		return err
	}

	if withTLS {
		output.Info("Issuing certificate and enabling TLS...")
		if err := tx.Secure(cmd.Context(), site, email, !noReload); err != nil {
			if errors.Is(err, errors.ErrRolledBack) {
				output.Warn("TLS augmentation rolled back, site stays on plain HTTP: %v", err)
			} else {
				cfg.Sites[domain] = site
				if serr := saveConfig(cfg); serr != nil {
					output.Warn("Site created but config save failed: %v", serr)
				}
				return err
			}
		}
	}

	cfg.Sites[domain] = site
	if err := saveConfig(cfg); err != nil {
		output.Warn("Site created but config save failed: %v", err)
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"domain":    domain,
			"archetype": siteType,
			"enabled":   true,
			"tls":       site.TLS,
		},
		"Site %s created and enabled", domain,
	)
}

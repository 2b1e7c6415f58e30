package cli

import (
	"os"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/logger"
	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Nginx site synthesis and activation",
	Long: `sitectl renders nginx server blocks from archetype templates and
manages their lifecycle: activation through the sites-enabled symlink
store, TLS augmentation with automatic rollback, and validate-before-
commit semantics so a broken configuration never reaches the live set.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			_ = output.JSON(map[string]interface{}{
				"success": false,
				"code":    string(errors.Code(err)),
				"error":   err.Error(),
			})
		}
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}

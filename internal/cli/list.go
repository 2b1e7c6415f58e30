package cli

import (
	"sort"

	"github.com/ovanta/sitectl/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sites",
	Long: `List all sites with their store state.

Sites present in the store but unknown to the registry show up with
type "unknown"; enabled links whose artifact has disappeared are
flagged as dangling.

Examples:
  sitectl list
  sitectl ls --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type siteListItem struct {
	Domain    string `json:"domain"`
	Archetype string `json:"archetype"`
	Root      string `json:"root,omitempty"`
	TLS       bool   `json:"tls"`
	Enabled   bool   `json:"enabled"`
	Dangling  bool   `json:"dangling,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, tx, err := loadConfigAndTransaction()
	if err != nil {
		return err
	}

	entries, err := tx.Store.List()
	if err != nil {
		output.Warn("Could not read the site store: %v", err)
	}

	items := make([]siteListItem, 0)
	seen := make(map[string]bool)
	for _, entry := range entries {
		item := siteListItem{
			Domain:    entry.Domain,
			Archetype: "unknown",
			Enabled:   entry.Enabled,
			Dangling:  entry.Dangling,
		}
		if site, exists := cfg.Sites[entry.Domain]; exists {
			item.Archetype = site.Archetype
			item.Root = site.Root
			item.TLS = site.TLS
		}
		items = append(items, item)
		seen[entry.Domain] = true
	}

	// Registered sites whose artifact is gone still deserve a row.
	for domain, site := range cfg.Sites {
		if !seen[domain] {
			items = append(items, siteListItem{
				Domain:    domain,
				Archetype: site.Archetype,
				Root:      site.Root,
				TLS:       site.TLS,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Domain < items[j].Domain
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]siteListItem{})
		}
		output.Info("No sites configured")
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	headers := []string{"DOMAIN", "TYPE", "ROOT", "TLS", "ENABLED"}
	rows := make([][]string, 0, len(items))

	for _, item := range items {
		tls := "no"
		if item.TLS {
			tls = "yes"
		}

		enabled := "no"
		if item.Enabled {
			enabled = "yes"
		}
		if item.Dangling {
			enabled = "dangling"
		}

		rows = append(rows, []string{
			item.Domain,
			item.Archetype,
			item.Root,
			tls,
			enabled,
		})
	}

	output.Table(headers, rows)
	return nil
}

package cli

import (
	"fmt"

	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/deploy"
	"github.com/ovanta/sitectl/internal/output"
)

// loadConfigAndTransaction loads config and wires the transaction over it
func loadConfigAndTransaction() (*config.Config, *deploy.Transaction, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, deps.TransactionFactory.New(cfg), nil
}

// requireRoot ensures the process has the privileges the store paths need
func requireRoot() error {
	return deps.RootChecker.RequireRoot()
}

// saveConfig saves the config and returns error instead of just warning
func saveConfig(cfg *config.Config) error {
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool   `json:"success"`
	Domain  string `json:"domain"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(domain, action string) CommandResult {
	return CommandResult{
		Success: true,
		Domain:  domain,
		Action:  action,
	}
}

package cli

import (
	"os"

	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/deploy"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/input"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader       ConfigLoader
	TransactionFactory TransactionFactory
	RootChecker        RootChecker
	StdinReader        StdinReader
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// TransactionFactory creates the deploy transaction for a config
type TransactionFactory interface {
	New(cfg *config.Config) *deploy.Transaction
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// StdinReader reads from stdin
type StdinReader = input.Reader

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:       &realConfigLoader{},
	TransactionFactory: &realTransactionFactory{},
	RootChecker:        &realRootChecker{},
	StdinReader:        input.NewStdinReader(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realTransactionFactory struct{}

func (r *realTransactionFactory) New(cfg *config.Config) *deploy.Transaction {
	return deploy.New(cfg)
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.ErrRootRequired
	}
	return nil
}

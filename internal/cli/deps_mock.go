package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ovanta/sitectl/internal/augment"
	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/deploy"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/input"
	"github.com/ovanta/sitectl/internal/lock"
	"github.com/ovanta/sitectl/internal/ssl"
	"github.com/ovanta/sitectl/internal/store"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockTransactionFactory is a test double for TransactionFactory
type MockTransactionFactory struct {
	Tx *deploy.Transaction
}

func (m *MockTransactionFactory) New(cfg *config.Config) *deploy.Transaction {
	return m.Tx
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errors.ErrRootRequired
	}
	return nil
}

// MockChecker is a test double for the syntax checker. Results are
// consumed one per call; an exhausted queue means success.
type MockChecker struct {
	Results []error
	Calls   int
}

func (m *MockChecker) Check(ctx context.Context) error {
	m.Calls++
	if len(m.Results) == 0 {
		return nil
	}
	err := m.Results[0]
	m.Results = m.Results[1:]
	return err
}

// MockReloader is a test double for the reload trigger
type MockReloader struct {
	Err   error
	Calls int
}

func (m *MockReloader) Reload(ctx context.Context) error {
	m.Calls++
	return m.Err
}

// MockIssuer is a test double for the certificate issuer
type MockIssuer struct {
	Err     error
	Domains []string
	Renews  []string
}

func (m *MockIssuer) Renew(ctx context.Context, domain string) error {
	m.Renews = append(m.Renews, domain)
	return m.Err
}

func (m *MockIssuer) Issue(ctx context.Context, domain, email string, altNames ...string) (*ssl.Cert, error) {
	m.Domains = append(m.Domains, append([]string{domain}, altNames...)...)
	if m.Err != nil {
		return nil, m.Err
	}
	return &ssl.Cert{
		Domain:   domain,
		CertPath: "/etc/letsencrypt/live/" + domain + "/fullchain.pem",
		KeyPath:  "/etc/letsencrypt/live/" + domain + "/privkey.pem",
	}, nil
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	OldDeps    *Dependencies
	MockConfig *MockConfigLoader
	Checker    *MockChecker
	Reloader   *MockReloader
	Issuer     *MockIssuer
	Tx         *deploy.Transaction
}

// NewTestHelper swaps the package dependencies for mocks backed by a
// real store under dir, and restores the originals on cleanup.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, dir string) *TestHelper {
	t.Helper()

	checker := &MockChecker{}
	reloader := &MockReloader{}
	issuer := &MockIssuer{}
	tx := &deploy.Transaction{
		Store:     store.New(filepath.Join(dir, "available"), filepath.Join(dir, "enabled")),
		Augmenter: augment.New(filepath.Join(dir, "certs")),
		Checker:   checker,
		Reloader:  reloader,
		Issuer:    issuer,
		Locks:     lock.New(filepath.Join(dir, "locks"), 200*time.Millisecond),
	}
	mockConfig := &MockConfigLoader{Cfg: config.New()}

	helper := &TestHelper{
		OldDeps:    deps,
		MockConfig: mockConfig,
		Checker:    checker,
		Reloader:   reloader,
		Issuer:     issuer,
		Tx:         tx,
	}

	deps = &Dependencies{
		ConfigLoader:       mockConfig,
		TransactionFactory: &MockTransactionFactory{Tx: tx},
		RootChecker:        &MockRootChecker{IsRoot: true},
		StdinReader:        input.NewStringReader("y\n"),
	}

	t.Cleanup(func() {
		deps = helper.OldDeps
	})

	return helper
}

// SetRootAccess sets whether root access is available
func (h *TestHelper) SetRootAccess(isRoot bool) {
	deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
}

// SetStdinInput sets the scripted stdin lines
func (h *TestHelper) SetStdinInput(lines ...string) {
	deps.StdinReader = input.NewStringReader(lines...)
}

// AddSite registers a site in the mock config
func (h *TestHelper) AddSite(site *config.Site) {
	h.MockConfig.Cfg.Sites[site.Domain] = site
}

// GetConfig returns the current mock config
func (h *TestHelper) GetConfig() *config.Config {
	return h.MockConfig.Cfg
}

package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/ovanta/sitectl/internal/errors"
)

func resetSecureFlags() {
	secureEmail = ""
	secureRenew = false
	noReload = false
}

func TestRunSecure(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	seedSite(t, helper, "example.com")
	resetSecureFlags()
	secureEmail = "admin@example.com"
	secureCmd.SetContext(context.Background())

	if err := runSecure(secureCmd, []string{"example.com"}); err != nil {
		t.Fatalf("runSecure failed: %v", err)
	}

	site := helper.GetConfig().Sites["example.com"]
	if !site.TLS || site.CertPath == "" || site.KeyPath == "" {
		t.Error("site should record its certificate paths")
	}
	content, _ := helper.Tx.Store.ReadArtifact("example.com")
	if !strings.Contains(content, "listen 443 ssl;") {
		t.Error("secured artifact must listen on 443")
	}
	if helper.MockConfig.SaveCalls == 0 {
		t.Error("config should be saved")
	}
}

func TestRunSecureFallsBackToConfigEmail(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	seedSite(t, helper, "example.com")
	helper.GetConfig().Email = "ops@example.com"
	resetSecureFlags()
	secureCmd.SetContext(context.Background())

	if err := runSecure(secureCmd, []string{"example.com"}); err != nil {
		t.Fatalf("runSecure failed: %v", err)
	}
}

func TestRunSecureWithoutEmail(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	seedSite(t, helper, "example.com")
	resetSecureFlags()
	secureCmd.SetContext(context.Background())

	err := runSecure(secureCmd, []string{"example.com"})
	if err == nil || !strings.Contains(err.Error(), "--email is required") {
		t.Errorf("expected email requirement, got %v", err)
	}
}

func TestRunSecureUnknownSite(t *testing.T) {
	_ = NewTestHelper(t, t.TempDir())
	resetSecureFlags()
	secureEmail = "admin@example.com"
	secureCmd.SetContext(context.Background())

	err := runSecure(secureCmd, []string{"unknown.example.com"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRunSecureRollbackSurfaces(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	seedSite(t, helper, "example.com")
	helper.Checker.Results = []error{errors.New("nginx: [emerg] cannot load certificate")}
	resetSecureFlags()
	secureEmail = "admin@example.com"
	secureCmd.SetContext(context.Background())

	err := runSecure(secureCmd, []string{"example.com"})
	if !errors.Is(err, errors.ErrRolledBack) {
		t.Fatalf("expected ErrRolledBack, got %v", err)
	}
	site := helper.GetConfig().Sites["example.com"]
	if site.TLS {
		t.Error("rolled-back site must not be marked TLS")
	}
}

func TestRunSecureRenew(t *testing.T) {
	helper := NewTestHelper(t, t.TempDir())
	seedSite(t, helper, "example.com")
	resetSecureFlags()
	secureRenew = true
	secureCmd.SetContext(context.Background())

	if err := runSecure(secureCmd, []string{"example.com"}); err != nil {
		t.Fatalf("runSecure failed: %v", err)
	}
	if len(helper.Issuer.Renews) != 1 || helper.Issuer.Renews[0] != "example.com" {
		t.Errorf("unexpected renewals: %v", helper.Issuer.Renews)
	}
	if len(helper.Issuer.Domains) != 0 {
		t.Error("renew must not trigger a fresh issuance")
	}
}

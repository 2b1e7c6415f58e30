package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ovanta/sitectl/internal/augment"
	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/lock"
	"github.com/ovanta/sitectl/internal/ssl"
	"github.com/ovanta/sitectl/internal/store"
)

// fakeChecker returns queued results, one per Check call. An exhausted
// queue means success.
type fakeChecker struct {
	results []error
	calls   int
}

func (f *fakeChecker) Check(ctx context.Context) error {
	f.calls++
	if len(f.results) == 0 {
		return nil
	}
	err := f.results[0]
	f.results = f.results[1:]
	return err
}

type fakeReloader struct {
	err   error
	calls int
}

func (f *fakeReloader) Reload(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeIssuer struct {
	err    error
	calls  []string // domains requested, including alt names
	renews []string
}

func (f *fakeIssuer) Issue(ctx context.Context, domain, email string, altNames ...string) (*ssl.Cert, error) {
	f.calls = append(f.calls, append([]string{domain}, altNames...)...)
	if f.err != nil {
		return nil, f.err
	}
	return &ssl.Cert{
		Domain:   domain,
		CertPath: "/etc/letsencrypt/live/" + domain + "/fullchain.pem",
		KeyPath:  "/etc/letsencrypt/live/" + domain + "/privkey.pem",
	}, nil
}

func (f *fakeIssuer) Renew(ctx context.Context, domain string) error {
	f.renews = append(f.renews, domain)
	return f.err
}

func newTestTransaction(t *testing.T) (*Transaction, *fakeChecker, *fakeReloader, *fakeIssuer) {
	t.Helper()
	dir := t.TempDir()
	checker := &fakeChecker{}
	reloader := &fakeReloader{}
	issuer := &fakeIssuer{}
	tx := &Transaction{
		Store:     store.New(filepath.Join(dir, "available"), filepath.Join(dir, "enabled")),
		Augmenter: augment.New(filepath.Join(dir, "certs")),
		Checker:   checker,
		Reloader:  reloader,
		Issuer:    issuer,
		Locks:     lock.New(filepath.Join(dir, "locks"), 200*time.Millisecond),
	}
	return tx, checker, reloader, issuer
}

func staticSite() *config.Site {
	return &config.Site{
		Domain:    "example.com",
		Archetype: config.ArchetypeStatic,
		Root:      "/srv/example",
		WWWPolicy: config.WWWApexPrimary,
	}
}

func TestCommitSuccess(t *testing.T) {
	tx, checker, reloader, _ := newTestTransaction(t)

	if err := tx.Commit(context.Background(), staticSite(), true); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !tx.Store.ArtifactExists("example.com") {
		t.Error("artifact should exist after commit")
	}
	enabled, _ := tx.Store.IsEnabled("example.com")
	if !enabled {
		t.Error("site should be enabled after commit")
	}
	if checker.calls != 1 {
		t.Errorf("expected 1 check, got %d", checker.calls)
	}
	if reloader.calls != 1 {
		t.Errorf("expected 1 reload, got %d", reloader.calls)
	}
}

func TestCommitRejectedLeavesArtifactUnlinked(t *testing.T) {
	tx, checker, reloader, _ := newTestTransaction(t)
	diag := fmt.Errorf(`nginx: [emerg] unexpected "}" in example.com:12`)
	checker.results = []error{diag}

	err := tx.Commit(context.Background(), staticSite(), true)
	if !errors.Is(err, errors.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	// Diagnostic text preserved verbatim.
	var siteErr *errors.SiteError
	if !errors.As(err, &siteErr) || siteErr.Err != diag {
		t.Errorf("checker diagnostics must be surfaced verbatim, got %v", err)
	}

	// Artifact persists for inspection, enabled store untouched.
	if !tx.Store.ArtifactExists("example.com") {
		t.Error("artifact must persist for operator inspection")
	}
	enabled, _ := tx.Store.IsEnabled("example.com")
	if enabled {
		t.Error("rejected site must not be enabled")
	}
	if reloader.calls != 0 {
		t.Error("reload must not run after a rejection")
	}
}

func TestCommitInvalidSiteNoMutation(t *testing.T) {
	tx, checker, _, _ := newTestTransaction(t)

	err := tx.Commit(context.Background(), &config.Site{Domain: "bad domain", Archetype: "static", Root: "/srv"}, true)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if checker.calls != 0 {
		t.Error("invalid input must be rejected before any filesystem work")
	}
	entries, _ := tx.Store.List()
	if len(entries) != 0 {
		t.Error("invalid input must not create artifacts")
	}
}

func TestCommitBusy(t *testing.T) {
	tx, _, _, _ := newTestTransaction(t)

	release, err := tx.Locks.Acquire("example.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	if err := tx.Commit(context.Background(), staticSite(), true); !errors.Is(err, errors.ErrBusy) {
		t.Errorf("expected ErrBusy while the domain lock is held, got %v", err)
	}
}

func TestSecureSuccess(t *testing.T) {
	tx, checker, reloader, issuer := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := tx.Secure(context.Background(), site, "admin@example.com", true); err != nil {
		t.Fatalf("Secure failed: %v", err)
	}

	content, err := tx.Store.ReadArtifact("example.com")
	if err != nil {
		t.Fatalf("ReadArtifact failed: %v", err)
	}
	if !strings.Contains(content, "listen 443 ssl;") {
		t.Error("secured artifact must listen on 443")
	}
	if !site.TLS || site.CertPath == "" || site.KeyPath == "" {
		t.Error("site should record its certificate paths")
	}

	// Issuance covered the www variant (apex-primary policy).
	if len(issuer.calls) != 2 || issuer.calls[1] != "www.example.com" {
		t.Errorf("expected www alt name in issuance, got %v", issuer.calls)
	}

	// Snapshot discarded after successful validation.
	if _, err := os.Stat(tx.Store.ArtifactPath("example.com") + ".pre-tls"); !os.IsNotExist(err) {
		t.Error("snapshot should be discarded after success")
	}

	// One check for the commit, one for the augmentation.
	if checker.calls != 2 {
		t.Errorf("expected 2 checks, got %d", checker.calls)
	}
	if reloader.calls != 1 {
		t.Errorf("expected 1 reload, got %d", reloader.calls)
	}
}

func TestSecureRollbackIsByteExact(t *testing.T) {
	tx, checker, reloader, _ := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	before, _ := tx.Store.ReadArtifact("example.com")

	// Augmented config rejected; the post-restore check passes.
	checker.results = []error{fmt.Errorf("nginx: [emerg] cannot load certificate")}

	err := tx.Secure(context.Background(), site, "admin@example.com", true)
	if !errors.Is(err, errors.ErrRolledBack) {
		t.Fatalf("expected ErrRolledBack, got %v", err)
	}

	after, _ := tx.Store.ReadArtifact("example.com")
	if after != before {
		t.Error("rollback must restore the artifact byte-for-byte")
	}
	if site.TLS {
		t.Error("rolled-back site must not be marked TLS")
	}
	if reloader.calls != 0 {
		t.Error("no reload after a rollback")
	}
}

func TestSecureRestoreFailingValidationIsFatal(t *testing.T) {
	tx, checker, _, _ := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Post-augmentation check fails, and so does the post-restore check.
	checker.results = []error{
		fmt.Errorf("nginx: [emerg] cannot load certificate"),
		fmt.Errorf("nginx: [emerg] some other corruption"),
	}

	err := tx.Secure(context.Background(), site, "admin@example.com", true)
	if !errors.Is(err, errors.ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent when the restoration fails validation, got %v", err)
	}
}

func TestSecureWithoutArtifact(t *testing.T) {
	tx, _, _, issuer := newTestTransaction(t)

	err := tx.Secure(context.Background(), staticSite(), "admin@example.com", true)
	if !errors.Is(err, errors.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
	if len(issuer.calls) != 0 {
		t.Error("no certificate must be requested without an artifact")
	}
}

func TestSecureIssuerFailureLeavesArtifactAlone(t *testing.T) {
	tx, _, _, issuer := newTestTransaction(t)
	site := staticSite()
	issuer.err = errors.Wrap(errors.ErrCodeCert, "certificate issuance failed", fmt.Errorf("challenges failed"))

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	before, _ := tx.Store.ReadArtifact("example.com")

	err := tx.Secure(context.Background(), site, "admin@example.com", true)
	if errors.Code(err) != errors.ErrCodeCert {
		t.Fatalf("expected CERT failure, got %v", err)
	}

	after, _ := tx.Store.ReadArtifact("example.com")
	if after != before {
		t.Error("artifact must be untouched when issuance fails")
	}
}

func TestSecureIsIdempotent(t *testing.T) {
	tx, _, _, _ := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := tx.Secure(context.Background(), site, "admin@example.com", false); err != nil {
		t.Fatalf("first Secure failed: %v", err)
	}
	first, _ := tx.Store.ReadArtifact("example.com")

	if err := tx.Secure(context.Background(), site, "admin@example.com", false); err != nil {
		t.Fatalf("second Secure failed: %v", err)
	}
	second, _ := tx.Store.ReadArtifact("example.com")

	if first != second {
		t.Error("securing twice must not duplicate directive blocks")
	}
}

func TestEnableRejectionRollsBackLink(t *testing.T) {
	tx, checker, _, _ := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := tx.Disable(context.Background(), "example.com", false); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}

	checker.results = []error{fmt.Errorf("nginx: [emerg] broken elsewhere")}
	err := tx.Enable(context.Background(), "example.com", true)
	if !errors.Is(err, errors.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	enabled, _ := tx.Store.IsEnabled("example.com")
	if enabled {
		t.Error("rejected enable must unlink again")
	}
}

func TestRenew(t *testing.T) {
	tx, _, reloader, issuer := newTestTransaction(t)

	if err := tx.Renew(context.Background(), "example.com", true); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if len(issuer.renews) != 1 || issuer.renews[0] != "example.com" {
		t.Errorf("unexpected renewals: %v", issuer.renews)
	}
	if reloader.calls != 1 {
		t.Errorf("expected 1 reload, got %d", reloader.calls)
	}

	if err := tx.Renew(context.Background(), "not a domain", true); err == nil {
		t.Error("expected domain validation error")
	}
}

func TestRemove(t *testing.T) {
	tx, _, _, _ := newTestTransaction(t)
	site := staticSite()

	if err := tx.Commit(context.Background(), site, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := tx.Remove(context.Background(), "example.com", true); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if tx.Store.ArtifactExists("example.com") {
		t.Error("artifact should be gone after remove")
	}

	if err := tx.Remove(context.Background(), "example.com", true); !errors.Is(err, errors.ErrArtifactMissing) {
		t.Errorf("expected ErrArtifactMissing, got %v", err)
	}
}

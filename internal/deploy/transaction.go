// Package deploy wraps render, write, check, activate, and reload into
// a validate-before-commit transaction.
//
// A failing syntax check always aborts before the enabled store is
// touched, and a failed TLS augmentation restores the pre-augmentation
// snapshot byte-for-byte and re-validates the restoration. Every
// mutating operation holds the per-domain lock for its full duration.
package deploy

import (
	"context"

	"github.com/ovanta/sitectl/internal/augment"
	"github.com/ovanta/sitectl/internal/config"
	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/executor"
	"github.com/ovanta/sitectl/internal/lock"
	"github.com/ovanta/sitectl/internal/logger"
	"github.com/ovanta/sitectl/internal/nginx"
	"github.com/ovanta/sitectl/internal/render"
	"github.com/ovanta/sitectl/internal/ssl"
	"github.com/ovanta/sitectl/internal/store"
)

// Transaction orchestrates the commit and augmentation paths over the
// store and the external collaborators. Collaborators are interfaces
// so the transaction logic is testable without a proxy process.
type Transaction struct {
	Store     *store.Store
	Augmenter *augment.Augmenter
	Checker   nginx.SyntaxChecker
	Reloader  nginx.ReloadTrigger
	Issuer    ssl.CertificateIssuer
	Locks     *lock.Locker
}

// New wires a Transaction with the real nginx and certbot
// collaborators, taking every path and timeout from cfg.
func New(cfg *config.Config) *Transaction {
	exec := executor.NewSystemExecutor()
	return &Transaction{
		Store:     store.New(cfg.AvailableDir, cfg.EnabledDir),
		Augmenter: augment.New(cfg.CertDir),
		Checker:   nginx.NewChecker(exec, cfg.CommandTimeout),
		Reloader:  nginx.NewReloader(exec, cfg.CommandTimeout),
		Issuer:    ssl.NewCertbot(exec, cfg.CertDir, cfg.CommandTimeout),
		Locks:     lock.New(cfg.LockDir, cfg.LockTimeout),
	}
}

// Commit renders the site, writes the artifact, validates the full
// configuration set, and on success enables the site and reloads.
//
// A render-incomplete result is never written. A checker rejection
// leaves the artifact on disk for inspection but never links it into
// the enabled store; the checker's diagnostic text is carried verbatim
// in the returned error. An interruption between write and link leaves
// the artifact present but not enabled, which a later Commit or Enable
// repairs.
func (t *Transaction) Commit(ctx context.Context, site *config.Site, reload bool) error {
	if err := site.Validate(); err != nil {
		return err
	}

	release, err := t.Locks.Acquire(site.Domain)
	if err != nil {
		return err
	}
	defer release()

	text, err := render.Site(site)
	if err != nil {
		return err
	}

	if err := t.Store.WriteArtifact(site.Domain, text); err != nil {
		return errors.WrapDomain(errors.ErrCodeInternal, site.Domain, err)
	}

	if err := t.Checker.Check(ctx); err != nil {
		return errors.Rejected(site.Domain, err)
	}

	if err := t.Store.Enable(site.Domain); err != nil {
		return err
	}

	if reload {
		if err := t.Reloader.Reload(ctx); err != nil {
			return err
		}
	}

	logger.InfoFields("site committed", map[string]interface{}{
		"domain":    site.Domain,
		"archetype": site.Archetype,
	})
	return nil
}

// Secure issues a certificate for the site, injects the TLS directives
// into its artifact, and re-validates.
//
// On checker rejection the pre-augmentation snapshot is restored
// byte-for-byte and the restoration itself is re-validated: a clean
// restoration surfaces as a rolled-back warning (the site still serves
// over plain HTTP), a restoration that fails validation is the one
// fatal inconsistency this system reports, since it can no longer tell
// which content is live. On success the site's certificate paths are
// recorded on the Site value; persisting them is the caller's job.
func (t *Transaction) Secure(ctx context.Context, site *config.Site, email string, reload bool) error {
	if err := config.ValidateDomain(site.Domain); err != nil {
		return err
	}

	release, err := t.Locks.Acquire(site.Domain)
	if err != nil {
		return err
	}
	defer release()

	if !t.Store.ArtifactExists(site.Domain) {
		return errors.NotFound(site.Domain)
	}

	var altNames []string
	if secondary := site.SecondaryHost(); secondary != "" {
		altNames = append(altNames, secondary)
	}
	cert, err := t.Issuer.Issue(ctx, site.Domain, email, altNames...)
	if err != nil {
		return err
	}

	artifactPath := t.Store.ArtifactPath(site.Domain)
	if err := t.Augmenter.AugmentTLS(artifactPath, site.Domain); err != nil {
		return err
	}

	if err := t.Checker.Check(ctx); err != nil {
		return t.rollback(ctx, site.Domain, artifactPath, err)
	}
	t.Augmenter.DiscardSnapshot(artifactPath)

	site.TLS = true
	site.CertPath = cert.CertPath
	site.KeyPath = cert.KeyPath

	if reload {
		if err := t.Reloader.Reload(ctx); err != nil {
			return err
		}
	}

	logger.InfoFields("site secured", map[string]interface{}{
		"domain": site.Domain,
		"cert":   cert.CertPath,
	})
	return nil
}

// rollback restores the snapshot after a failed post-augmentation
// check and confirms the restoration validates. No further retry
// happens past a failed confirmation.
func (t *Transaction) rollback(ctx context.Context, domain, artifactPath string, cause error) error {
	logger.Warn("augmented configuration rejected for %s, restoring snapshot", domain)

	if err := t.Augmenter.Restore(artifactPath); err != nil {
		return errors.Inconsistent(domain, err)
	}
	if err := t.Checker.Check(ctx); err != nil {
		return errors.Inconsistent(domain, err)
	}
	return errors.RolledBack(domain, cause)
}

// Enable links the site into the enabled store, validates, and
// reloads. A rejection unlinks again so the live set is untouched.
func (t *Transaction) Enable(ctx context.Context, domain string, reload bool) error {
	if err := config.ValidateDomain(domain); err != nil {
		return err
	}

	release, err := t.Locks.Acquire(domain)
	if err != nil {
		return err
	}
	defer release()

	if err := t.Store.Enable(domain); err != nil {
		return err
	}

	if err := t.Checker.Check(ctx); err != nil {
		if derr := t.Store.Disable(domain); derr != nil {
			logger.Warn("rollback disable failed for %s: %v", domain, derr)
		}
		return errors.Rejected(domain, err)
	}

	if reload {
		return t.Reloader.Reload(ctx)
	}
	return nil
}

// Disable unlinks the site and reloads. The artifact survives.
func (t *Transaction) Disable(ctx context.Context, domain string, reload bool) error {
	if err := config.ValidateDomain(domain); err != nil {
		return err
	}

	release, err := t.Locks.Acquire(domain)
	if err != nil {
		return err
	}
	defer release()

	if err := t.Store.Disable(domain); err != nil {
		return err
	}

	if reload {
		return t.Reloader.Reload(ctx)
	}
	return nil
}

// Remove disables the site and deletes its artifact. The post-removal
// check failing is reported as a warning, not an error, since the site
// is already gone.
func (t *Transaction) Remove(ctx context.Context, domain string, reload bool) error {
	if err := config.ValidateDomain(domain); err != nil {
		return err
	}

	release, err := t.Locks.Acquire(domain)
	if err != nil {
		return err
	}
	defer release()

	if err := t.Store.Remove(domain); err != nil {
		return err
	}

	if err := t.Checker.Check(ctx); err != nil {
		logger.Warn("post-removal check failed: %v", err)
		return nil
	}
	if reload {
		if err := t.Reloader.Reload(ctx); err != nil {
			logger.Warn("post-removal reload failed: %v", err)
		}
	}
	return nil
}

// Renew refreshes the domain's certificate in place. The artifact is
// not touched; a reload picks up the new key material.
func (t *Transaction) Renew(ctx context.Context, domain string, reload bool) error {
	if err := config.ValidateDomain(domain); err != nil {
		return err
	}
	if err := t.Issuer.Renew(ctx, domain); err != nil {
		return err
	}
	if reload {
		return t.Reloader.Reload(ctx)
	}
	return nil
}

// Check validates the full configuration set without mutating anything.
func (t *Transaction) Check(ctx context.Context) error {
	return t.Checker.Check(ctx)
}

// Reload signals the proxy to reload. Callers must have validated
// first; the CLI surface chains Check before exposing this.
func (t *Transaction) Reload(ctx context.Context) error {
	return t.Reloader.Reload(ctx)
}

// Package ssl issues certificates through an external ACME client.
//
// The engine only needs the two file paths a successful issuance
// leaves at the well-known per-domain location; it never inspects
// certificate content itself.
package ssl

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/executor"
)

// Cert holds the file paths produced by issuance.
type Cert struct {
	Domain   string
	CertPath string // certificate chain
	KeyPath  string // private key
}

// CertificateIssuer obtains a certificate for a domain, optionally
// covering additional host names. On success the returned paths exist
// at the per-domain location. Renew refreshes an existing certificate
// in place.
type CertificateIssuer interface {
	Issue(ctx context.Context, domain, email string, altNames ...string) (*Cert, error)
	Renew(ctx context.Context, domain string) error
}

// Certbot implements CertificateIssuer via the certbot CLI.
type Certbot struct {
	exec    executor.CommandExecutor
	certDir string // per-domain certificate root, e.g. /etc/letsencrypt/live
	timeout time.Duration
}

// NewCertbot creates a Certbot issuer.
func NewCertbot(exec executor.CommandExecutor, certDir string, timeout time.Duration) *Certbot {
	return &Certbot{exec: exec, certDir: certDir, timeout: timeout}
}

// IsInstalled checks whether certbot is available on PATH.
func (c *Certbot) IsInstalled() bool {
	_, err := c.exec.LookPath("certbot")
	return err == nil
}

// Paths returns the certificate locations for a domain.
func (c *Certbot) Paths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(c.certDir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(c.certDir, domain, "privkey.pem"),
	}
}

// Issue obtains a certificate with certbot's nginx authenticator.
// altNames are added as further -d entries (the www variant, when the
// site's policy includes one).
func (c *Certbot) Issue(ctx context.Context, domain, email string, altNames ...string) (*Cert, error) {
	if !c.IsInstalled() {
		return nil, errors.Wrap(errors.ErrCodeCert, "certbot is not installed",
			fmt.Errorf("install it with: apt install certbot python3-certbot-nginx"))
	}

	args := []string{
		"certonly",
		"--nginx",
		"-d", domain,
	}
	for _, alt := range altNames {
		args = append(args, "-d", alt)
	}
	args = append(args,
		"--email", email,
		"--agree-tos",
		"--non-interactive",
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.exec.Execute(ctx, "certbot", args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCert, "certificate issuance failed",
			fmt.Errorf("%s", strings.TrimSpace(string(output))))
	}
	return c.Paths(domain), nil
}

// Renew renews the certificate for a specific domain.
func (c *Certbot) Renew(ctx context.Context, domain string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.exec.Execute(ctx, "certbot", "renew", "--cert-name", domain, "--non-interactive")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCert, "certificate renewal failed",
			fmt.Errorf("%s", strings.TrimSpace(string(output))))
	}
	return nil
}

// Package augment patches TLS directives into an already-rendered
// artifact by anchor-line insertion.
//
// The artifact is treated as a sequence of lines, never re-templated:
// the first line declaring the primary server name is the insertion
// anchor for the certificate directives, and the www variant's
// declaration (when present) receives its own listen directive so the
// redirect block can terminate TLS too. A byte-exact snapshot is taken
// before the first write so the caller can restore the pre-image if
// the augmented configuration fails validation.
package augment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/logger"
)

// snapshotSuffix names the pre-augmentation backup next to the artifact.
const snapshotSuffix = ".pre-tls"

// Augmenter injects TLS directives into rendered artifacts. CertDir is
// the per-domain certificate location, conventionally
// /etc/letsencrypt/live.
type Augmenter struct {
	CertDir string
}

// New creates an Augmenter resolving certificates under certDir.
func New(certDir string) *Augmenter {
	return &Augmenter{CertDir: certDir}
}

// CertPaths returns the certificate chain and private key paths for a
// domain. The certificate collaborator guarantees these exist once
// issuance reports success; the augmenter does not verify content.
func (a *Augmenter) CertPaths(domain string) (certPath, keyPath string) {
	return filepath.Join(a.CertDir, domain, "fullchain.pem"),
		filepath.Join(a.CertDir, domain, "privkey.pem")
}

// AugmentTLS inserts the TLS directive block into the artifact at
// artifactPath. Idempotent: an artifact already listening on 443 is
// returned unmodified. When no anchor line exists for the primary
// domain the artifact is left untouched and ErrAnchorNotFound is
// returned; no write happens without a successful anchor match.
func (a *Augmenter) AugmentTLS(artifactPath, domain string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(domain)
		}
		return errors.WrapDomain(errors.ErrCodeInternal, domain, err)
	}
	text := string(data)

	if hasTLSMarker(text) {
		logger.Debug("artifact for %s already terminates TLS, skipping augmentation", domain)
		return nil
	}

	lines := strings.Split(text, "\n")
	patched, err := insertTLS(lines, domain, a.CertPaths)
	if err != nil {
		return errors.WrapDomain(errors.ErrCodeAnchor, domain, err)
	}

	if err := a.Snapshot(artifactPath); err != nil {
		return errors.WrapDomain(errors.ErrCodeInternal, domain, err)
	}

	if err := os.WriteFile(artifactPath, []byte(strings.Join(patched, "\n")), 0644); err != nil {
		return errors.WrapDomain(errors.ErrCodeInternal, domain, err)
	}

	logger.InfoFields("tls directives injected", map[string]interface{}{
		"domain":   domain,
		"artifact": artifactPath,
	})
	return nil
}

// hasTLSMarker reports whether the artifact already carries a TLS
// listen directive.
func hasTLSMarker(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "listen 443") {
			return true
		}
	}
	return false
}

// isNameAnchor reports whether line declares exactly the given host.
func isNameAnchor(line, host string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "server_name "+host+";" ||
		strings.HasPrefix(trimmed, "server_name "+host+" ")
}

// insertTLS returns a new line sequence with the TLS directives
// inserted after the primary anchor, and the secondary listen
// directives after the www variant's anchor when one exists. The
// primary anchor is mandatory.
func insertTLS(lines []string, domain string, certPaths func(string) (string, string)) ([]string, error) {
	certPath, keyPath := certPaths(domain)

	primaryIdx := -1
	secondaryIdx := -1
	for i, line := range lines {
		if primaryIdx == -1 && isNameAnchor(line, domain) {
			primaryIdx = i
			continue
		}
		if secondaryIdx == -1 && isNameAnchor(line, "www."+domain) {
			secondaryIdx = i
		}
	}
	if primaryIdx == -1 {
		return nil, fmt.Errorf("no server_name line for %s", domain)
	}

	primaryBlock := []string{
		"listen 443 ssl;",
		"ssl_certificate " + certPath + ";",
		"ssl_certificate_key " + keyPath + ";",
		"ssl_protocols TLSv1.2 TLSv1.3;",
		"ssl_ciphers HIGH:!aNULL:!MD5;",
		"ssl_session_cache shared:SSL:10m;",
		"ssl_session_timeout 10m;",
	}
	secondaryBlock := []string{
		"listen 443 ssl;",
		"ssl_certificate " + certPath + ";",
		"ssl_certificate_key " + keyPath + ";",
	}

	out := make([]string, 0, len(lines)+len(primaryBlock)+len(secondaryBlock))
	for i, line := range lines {
		out = append(out, line)
		switch i {
		case primaryIdx:
			out = append(out, indented(line, primaryBlock)...)
		case secondaryIdx:
			out = append(out, indented(line, secondaryBlock)...)
		}
	}
	return out, nil
}

// indented prefixes each directive with the anchor line's indentation.
func indented(anchor string, directives []string) []string {
	indent := anchor[:len(anchor)-len(strings.TrimLeft(anchor, " \t"))]
	out := make([]string, len(directives))
	for i, d := range directives {
		out[i] = indent + d
	}
	return out
}

// snapshotPath returns the backup location for an artifact.
func snapshotPath(artifactPath string) string {
	return artifactPath + snapshotSuffix
}

// Snapshot copies the artifact byte-for-byte to its backup location.
func (a *Augmenter) Snapshot(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to read artifact for snapshot: %w", err)
	}
	if err := os.WriteFile(snapshotPath(artifactPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Restore writes the snapshot back over the artifact, byte-exact, and
// removes the snapshot. Used when the augmented configuration fails
// validation.
func (a *Augmenter) Restore(artifactPath string) error {
	data, err := os.ReadFile(snapshotPath(artifactPath))
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := os.WriteFile(artifactPath, data, 0644); err != nil {
		return fmt.Errorf("failed to restore artifact: %w", err)
	}
	return os.Remove(snapshotPath(artifactPath))
}

// DiscardSnapshot removes the backup after the augmented configuration
// has validated. Missing snapshots are not an error.
func (a *Augmenter) DiscardSnapshot(artifactPath string) {
	if err := os.Remove(snapshotPath(artifactPath)); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to discard snapshot %s: %v", snapshotPath(artifactPath), err)
	}
}

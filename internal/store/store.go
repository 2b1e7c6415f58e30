// Package store manages the available/enabled directory pair.
//
// Rendered artifacts live in the available store, one file per domain.
// Activation is a symlink in the enabled store pointing at the
// artifact; enable and disable are idempotent, and a link whose target
// artifact has been deleted out-of-band is reported as a dangling
// anomaly rather than treated as enabled. The two stores must be
// distinct directories; activation changes refuse a collapsed layout.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/logger"
)

// Store holds the two store locations.
type Store struct {
	availableDir string
	enabledDir   string
}

// Entry is one row of the site listing.
type Entry struct {
	Domain   string `json:"domain"`
	Enabled  bool   `json:"enabled"`
	Dangling bool   `json:"dangling,omitempty"` // link present, artifact gone
}

// New creates a Store over the given directories.
func New(availableDir, enabledDir string) *Store {
	return &Store{availableDir: availableDir, enabledDir: enabledDir}
}

// AvailableDir returns the available store location.
func (s *Store) AvailableDir() string { return s.availableDir }

// EnabledDir returns the enabled store location.
func (s *Store) EnabledDir() string { return s.enabledDir }

// ArtifactPath returns the artifact location for a domain.
func (s *Store) ArtifactPath(domain string) string {
	return filepath.Join(s.availableDir, domain)
}

// linkPath returns the activation link location for a domain.
func (s *Store) linkPath(domain string) string {
	return filepath.Join(s.enabledDir, domain)
}

// requireSplit refuses activation changes when both stores resolve to
// the same directory. In that layout the link location is the artifact
// itself, so enabling would silently do nothing and disabling would
// hit the artifact.
func (s *Store) requireSplit() error {
	if filepath.Clean(s.availableDir) == filepath.Clean(s.enabledDir) {
		return errors.Validation(fmt.Sprintf(
			"available and enabled stores are the same directory (%s); activation needs a split layout, set available_dir and enabled_dir to distinct paths", s.availableDir))
	}
	return nil
}

// ArtifactExists reports whether an artifact is present for the domain.
func (s *Store) ArtifactExists(domain string) bool {
	_, err := os.Stat(s.ArtifactPath(domain))
	return err == nil
}

// WriteArtifact persists rendered text for a domain, creating the
// store directories on first use.
func (s *Store) WriteArtifact(domain, content string) error {
	if err := os.MkdirAll(s.availableDir, 0755); err != nil {
		return fmt.Errorf("failed to create available store: %w", err)
	}
	if err := os.MkdirAll(s.enabledDir, 0755); err != nil {
		return fmt.Errorf("failed to create enabled store: %w", err)
	}
	if err := os.WriteFile(s.ArtifactPath(domain), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	logger.Debug("artifact written for %s (%d bytes)", domain, len(content))
	return nil
}

// ReadArtifact returns the artifact content for a domain.
func (s *Store) ReadArtifact(domain string) (string, error) {
	data, err := os.ReadFile(s.ArtifactPath(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound(domain)
		}
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	return string(data), nil
}

// Enable creates the activation link for a domain. Fails with
// ErrArtifactMissing when no artifact exists; enabling an already
// enabled domain is a no-op.
func (s *Store) Enable(domain string) error {
	if err := s.requireSplit(); err != nil {
		return err
	}
	if !s.ArtifactExists(domain) {
		return errors.NotFound(domain)
	}

	link := s.linkPath(domain)
	if _, err := os.Lstat(link); err == nil {
		logger.Debug("%s already enabled", domain)
		return nil
	}

	if err := os.MkdirAll(s.enabledDir, 0755); err != nil {
		return fmt.Errorf("failed to create enabled store: %w", err)
	}
	if err := os.Symlink(s.ArtifactPath(domain), link); err != nil {
		return fmt.Errorf("failed to enable site: %w", err)
	}
	return nil
}

// Disable removes the activation link. Disabling a domain that is not
// enabled is a no-op; the artifact itself is never deleted. A regular
// file at the link location is refused.
func (s *Store) Disable(domain string) error {
	if err := s.requireSplit(); err != nil {
		return err
	}
	link := s.linkPath(domain)

	info, err := os.Lstat(link)
	if os.IsNotExist(err) {
		logger.Debug("%s not enabled, nothing to disable", domain)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check activation link: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return errors.Validation(fmt.Sprintf("%s is not a symlink, refusing to remove", link))
	}

	if err := os.Remove(link); err != nil {
		return fmt.Errorf("failed to disable site: %w", err)
	}
	return nil
}

// Remove disables the domain and deletes its artifact. Fails with
// ErrArtifactMissing when no artifact exists.
func (s *Store) Remove(domain string) error {
	if !s.ArtifactExists(domain) {
		return errors.NotFound(domain)
	}
	if err := s.Disable(domain); err != nil {
		return err
	}
	if err := os.Remove(s.ArtifactPath(domain)); err != nil {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}

// IsEnabled reports whether an activation link exists for the domain.
func (s *Store) IsEnabled(domain string) (bool, error) {
	_, err := os.Lstat(s.linkPath(domain))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check activation link: %w", err)
	}
	return true, nil
}

// List returns one entry per artifact in the available store, sorted
// by domain, plus a dangling entry for every enabled-store link whose
// target artifact is gone. Hidden files and snapshot backups are
// skipped. List never takes the mutation lock.
func (s *Store) List() ([]Entry, error) {
	entries := make([]Entry, 0)
	seen := make(map[string]bool)

	available, err := os.ReadDir(s.availableDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read available store: %w", err)
	}
	for _, e := range available {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".pre-tls") {
			continue
		}
		enabled, err := s.IsEnabled(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Domain: name, Enabled: enabled})
		seen[name] = true
	}

	enabled, err := os.ReadDir(s.enabledDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read enabled store: %w", err)
	}
	for _, e := range enabled {
		name := e.Name()
		if seen[name] || strings.HasPrefix(name, ".") {
			continue
		}
		// Link without an artifact: detectable anomaly, not a crash.
		entries = append(entries, Entry{Domain: name, Enabled: true, Dangling: true})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Domain < entries[j].Domain
	})
	return entries, nil
}

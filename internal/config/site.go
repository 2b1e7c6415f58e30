package config

import (
	"regexp"
	"strings"
	"time"

	"github.com/ovanta/sitectl/internal/errors"
)

// Site describes one virtual host managed by sitectl.
type Site struct {
	Domain         string    `yaml:"domain"`
	Archetype      string    `yaml:"archetype"` // static, php, proxy, redirect
	Root           string    `yaml:"root,omitempty"`
	Port           int       `yaml:"port,omitempty"`
	Target         string    `yaml:"target,omitempty"` // redirect archetype destination
	RuntimeVersion string    `yaml:"runtime_version,omitempty"`
	TLS            bool      `yaml:"tls"`
	CertPath       string    `yaml:"cert_path,omitempty"`
	KeyPath        string    `yaml:"key_path,omitempty"`
	WWWPolicy      WWWPolicy `yaml:"www,omitempty"`
	Enabled        bool      `yaml:"enabled"`
	CreatedAt      time.Time `yaml:"created_at"`
}

// Archetype constants.
const (
	ArchetypeStatic   = "static"
	ArchetypePHP      = "php"
	ArchetypeProxy    = "proxy"
	ArchetypeRedirect = "redirect"
)

// WWWPolicy selects how the www variant of the domain is handled.
type WWWPolicy string

// WWW policies. The primary host serves content; the other host gets a
// dedicated server block that redirects to the primary.
const (
	WWWNone        WWWPolicy = "none" // serve the apex only, no www block
	WWWApexPrimary WWWPolicy = "apex" // apex serves, www redirects to apex
	WWWWWWPrimary  WWWPolicy = "www"  // www serves, apex redirects to www
)

// ValidArchetypes returns all valid archetype names.
func ValidArchetypes() []string {
	return []string{ArchetypeStatic, ArchetypePHP, ArchetypeProxy, ArchetypeRedirect}
}

// IsValidArchetype checks if the given archetype is valid.
func IsValidArchetype(a string) bool {
	for _, valid := range ValidArchetypes() {
		if a == valid {
			return true
		}
	}
	return false
}

// ValidWWWPolicies returns all valid www policy names.
func ValidWWWPolicies() []WWWPolicy {
	return []WWWPolicy{WWWNone, WWWApexPrimary, WWWWWWPrimary}
}

// IsValidWWWPolicy checks if the given policy is valid. The empty
// string is treated as WWWNone.
func IsValidWWWPolicy(p WWWPolicy) bool {
	if p == "" {
		return true
	}
	for _, valid := range ValidWWWPolicies() {
		if p == valid {
			return true
		}
	}
	return false
}

// hostnameRe matches RFC 1123 host names: dot-separated labels of
// letters, digits and inner hyphens.
var hostnameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// ValidateDomain checks hostname syntax. Rejection happens before any
// filesystem mutation.
func ValidateDomain(domain string) error {
	if domain == "" {
		return errors.Validation("domain cannot be empty")
	}
	if len(domain) > 253 {
		return errors.Validation("domain exceeds 253 characters")
	}
	if !hostnameRe.MatchString(strings.ToLower(domain)) {
		return errors.ErrInvalidDomain
	}
	return nil
}

// ValidatePort checks that port is within 1-65535.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return errors.ErrInvalidPort
	}
	return nil
}

// Validate checks the site's fields against its archetype's
// requirements. It is the gate in front of every mutating operation.
func (s *Site) Validate() error {
	if err := ValidateDomain(s.Domain); err != nil {
		return err
	}
	if !IsValidArchetype(s.Archetype) {
		return errors.ErrUnknownArchetype
	}
	if !IsValidWWWPolicy(s.WWWPolicy) {
		return errors.Validation("invalid www policy: " + string(s.WWWPolicy))
	}

	switch s.Archetype {
	case ArchetypeStatic, ArchetypePHP:
		if s.Root == "" {
			return errors.Validation("root path is required for archetype " + s.Archetype)
		}
		if !strings.HasPrefix(s.Root, "/") {
			return errors.Validation("root path must be absolute: " + s.Root)
		}
	case ArchetypeProxy:
		if err := ValidatePort(s.Port); err != nil {
			return err
		}
	case ArchetypeRedirect:
		if err := ValidateDomain(s.Target); err != nil {
			return errors.Validation("invalid redirect target: " + s.Target)
		}
	}
	return nil
}

// PrimaryHost returns the host name designated as the canonical target
// of www/apex redirection.
func (s *Site) PrimaryHost() string {
	if s.WWWPolicy == WWWWWWPrimary {
		return "www." + s.Domain
	}
	return s.Domain
}

// SecondaryHost returns the redirected host, or "" when the www policy
// is none.
func (s *Site) SecondaryHost() string {
	switch s.WWWPolicy {
	case WWWApexPrimary:
		return "www." + s.Domain
	case WWWWWWPrimary:
		return s.Domain
	default:
		return ""
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ovanta/sitectl/internal/logger"
	"github.com/ovanta/sitectl/internal/platform"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It names every
// location and timeout the engine depends on, so components never
// consult global process state.
type Config struct {
	AvailableDir   string           `yaml:"available_dir"`
	EnabledDir     string           `yaml:"enabled_dir"`
	CertDir        string           `yaml:"cert_dir"`
	LockDir        string           `yaml:"lock_dir"`
	LockTimeout    time.Duration    `yaml:"lock_timeout"`
	CommandTimeout time.Duration    `yaml:"command_timeout"`
	DefaultPHP     string           `yaml:"default_php"`
	Email          string           `yaml:"email,omitempty"`
	Sites          map[string]*Site `yaml:"sites"`
}

const configDir = ".config/sitectl"
const configFile = "config.yaml"

// New creates a Config with default values.
func New() *Config {
	return &Config{
		AvailableDir:   "/etc/nginx/sites-available",
		EnabledDir:     "/etc/nginx/sites-enabled",
		CertDir:        "/etc/letsencrypt/live",
		LockDir:        "/run/lock/sitectl",
		LockTimeout:    5 * time.Second,
		CommandTimeout: 30 * time.Second,
		DefaultPHP:     "8.2",
		Sites:          make(map[string]*Site),
	}
}

// NewDetected creates a Config whose store locations come from
// platform detection, falling back to the standard defaults when
// detection fails.
func NewDetected() *Config {
	cfg := New()
	paths, err := platform.Detect()
	if err != nil {
		logger.Warn("store detection: %v (using %s)", err, cfg.AvailableDir)
		return cfg
	}
	cfg.AvailableDir = paths.Available
	cfg.EnabledDir = paths.Enabled
	return cfg
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk. When no config file exists yet the
// store locations are detected from the platform instead.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDetected(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Sites == nil {
		cfg.Sites = make(map[string]*Site)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// AddSite adds a site to the registry.
func (c *Config) AddSite(site *Site) error {
	if _, exists := c.Sites[site.Domain]; exists {
		return fmt.Errorf("site %s already exists", site.Domain)
	}
	c.Sites[site.Domain] = site
	return nil
}

// GetSite returns a site by domain.
func (c *Config) GetSite(domain string) (*Site, error) {
	site, exists := c.Sites[domain]
	if !exists {
		return nil, fmt.Errorf("site %s not found", domain)
	}
	return site, nil
}

// RemoveSite removes a site from the registry.
func (c *Config) RemoveSite(domain string) error {
	if _, exists := c.Sites[domain]; !exists {
		return fmt.Errorf("site %s not found", domain)
	}
	delete(c.Sites, domain)
	return nil
}

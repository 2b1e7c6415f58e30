// Package platform detects default nginx store locations for the
// current system. Detected paths seed the configuration defaults; an
// explicit config file always wins.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Paths holds the detected store locations.
type Paths struct {
	Available string
	Enabled   string
}

// Detect returns the nginx available/enabled directories for this
// system.
func Detect() (*Paths, error) {
	switch runtime.GOOS {
	case "linux":
		return detectLinux()
	case "darwin":
		return detectDarwin()
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func detectLinux() (*Paths, error) {
	// Debian/Ubuntu layout with a real available/enabled split.
	if pathExists("/etc/nginx/sites-available") || pathExists("/etc/nginx/sites-enabled") {
		return &Paths{
			Available: "/etc/nginx/sites-available",
			Enabled:   "/etc/nginx/sites-enabled",
		}, nil
	}
	// RHEL/CentOS: a single conf.d with no activation split. The
	// symlink store cannot drive that layout, so the operator has to
	// choose the directories explicitly.
	if pathExists("/etc/nginx/conf.d") {
		return nil, fmt.Errorf("nginx uses a single conf.d directory with no available/enabled split; set available_dir and enabled_dir in the config file")
	}
	// Fresh install without either layout; the split directories are
	// created on first use.
	if pathExists("/etc/nginx") {
		return &Paths{
			Available: "/etc/nginx/sites-available",
			Enabled:   "/etc/nginx/sites-enabled",
		}, nil
	}
	return nil, fmt.Errorf("nginx configuration directory not found (checked /etc/nginx)")
}

func detectDarwin() (*Paths, error) {
	// Homebrew ships a single servers directory with no activation
	// split, same situation as conf.d on RHEL.
	if pathExists("/opt/homebrew/etc/nginx") || pathExists("/usr/local/etc/nginx") {
		return nil, fmt.Errorf("homebrew nginx uses a single servers directory with no available/enabled split; set available_dir and enabled_dir in the config file")
	}
	return nil, fmt.Errorf("homebrew nginx not found (checked /opt/homebrew and /usr/local)")
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

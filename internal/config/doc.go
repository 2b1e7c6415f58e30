// Package config holds the sitectl configuration and the Site model.
//
// The configuration file lives at ~/.config/sitectl/config.yaml and
// names the three store locations (available, enabled, certificates),
// the lock directory, the timeouts applied to locking and external
// commands, and the registry of managed sites. Every component takes
// its paths from an explicit Config value; nothing reads global
// process state.
package config

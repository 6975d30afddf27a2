// Package paths resolves the platform-specific locations gitdb uses for
// its transactional store, search store, and configuration file,
// honoring the GITDB_DATA_DIR / GITDB_CONFIG_DIR overrides from the CLI
// spec and falling back to OS-conventional directories otherwise.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TSFileName is the transactional store's file within the data dir.
	TSFileName = "gitdb.db"

	// SSFileName is the search store's file within the data dir.
	SSFileName = "search.db"

	// ConfigFileName is the configuration file within the config dir.
	ConfigFileName = "config.yaml"
)

// Layout holds the resolved, created-on-demand directories and file
// paths gitdb persists to.
type Layout struct {
	DataDir   string
	ConfigDir string
}

// Resolve computes the data and config directories, honoring
// GITDB_DATA_DIR / GITDB_CONFIG_DIR, and creates them with
// create_dir_all semantics.
func Resolve() (*Layout, error) {
	dataDir := os.Getenv("GITDB_DATA_DIR")
	if dataDir == "" {
		base, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(base, ".local", "share", "gitdb")
	}

	configDir := os.Getenv("GITDB_CONFIG_DIR")
	if configDir == "" {
		base, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		configDir = filepath.Join(base, ".config", "gitdb")
	}

	layout := &Layout{DataDir: dataDir, ConfigDir: configDir}

	if err := os.MkdirAll(layout.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(layout.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return layout, nil
}

// TSPath returns the transactional store's database file path.
func (l *Layout) TSPath() string { return filepath.Join(l.DataDir, TSFileName) }

// SSPath returns the search store's database file path.
func (l *Layout) SSPath() string { return filepath.Join(l.DataDir, SSFileName) }

// ConfigPath returns the configuration file path.
func (l *Layout) ConfigPath() string { return filepath.Join(l.ConfigDir, ConfigFileName) }

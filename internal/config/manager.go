// Package config loads gitdb's configuration, merging built-in
// defaults, then the global config file, then the project config file,
// the same layering the teacher's configuration manager applies to its
// own global-then-project ".cwconfig" files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hlfshell/gitdb/internal/secure_store"
)

// Manager handles configuration loading, merging, and persistence.
type Manager struct {
	GlobalConfigPath  string
	ProjectConfigPath string
	config            *Config
	tokenStore        *secure_store.SecureStore
}

// NewManager creates a Manager rooted at globalDir (typically
// ~/.config/gitdb) and projectDir (typically ./.gitdb).
func NewManager(globalDir, projectDir string) (*Manager, error) {
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create global config directory: %w", err)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project config directory: %w", err)
	}

	return &Manager{GlobalConfigPath: globalDir, ProjectConfigPath: projectDir}, nil
}

// Load merges built-in defaults, the global config file, and the
// project config file, in that order, then loads the GitHub token from
// the secure store.
func (m *Manager) Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := m.loadConfigFile(filepath.Join(m.GlobalConfigPath, "config.yaml"), cfg); err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}
	if err := m.loadConfigFile(filepath.Join(m.ProjectConfigPath, "config.yaml"), cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = m.GlobalConfigPath
	}
	if cfg.Storage.ConfigDir == "" {
		cfg.Storage.ConfigDir = m.GlobalConfigPath
	}

	store, err := secure_store.NewSecureStore("github", m.GlobalConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open secure token store: %w", err)
	}
	m.tokenStore = store

	if token, err := store.GetString(); err == nil {
		cfg.GitHub.Token = token
	}

	if envToken := os.Getenv("GITDB_GITHUB_TOKEN"); envToken != "" {
		cfg.GitHub.Token = envToken
	}

	m.config = cfg
	return cfg, nil
}

// SaveToken persists the GitHub token through the secure store, never
// writing it into the plain YAML config file.
func (m *Manager) SaveToken(token string) error {
	if m.tokenStore == nil {
		store, err := secure_store.NewSecureStore("github", m.GlobalConfigPath)
		if err != nil {
			return fmt.Errorf("failed to open secure token store: %w", err)
		}
		m.tokenStore = store
	}
	if err := m.tokenStore.SetString(token); err != nil {
		return fmt.Errorf("failed to save GitHub token: %w", err)
	}
	if m.config != nil {
		m.config.GitHub.Token = token
	}
	return nil
}

// SaveGlobal writes cfg to the global config file.
func (m *Manager) SaveGlobal(cfg *Config) error {
	return m.saveConfig(cfg, filepath.Join(m.GlobalConfigPath, "config.yaml"))
}

// SaveProject writes cfg to the project config file.
func (m *Manager) SaveProject(cfg *Config) error {
	return m.saveConfig(cfg, filepath.Join(m.ProjectConfigPath, "config.yaml"))
}

// GetConfig returns the most recently loaded configuration.
func (m *Manager) GetConfig() *Config { return m.config }

func (m *Manager) loadConfigFile(path string, target *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Decode over a copy of target so that keys the file omits keep
	// their current values instead of decoding as zero.
	loaded := *target
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	mergeConfig(target, &loaded)
	return nil
}

func (m *Manager) saveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// mergeConfig overlays every non-zero string and integer field of
// source onto target, the same field-by-field precedence the teacher's
// config.Manager applies. Boolean fields are copied as-is; since
// loadConfigFile decodes each file over a copy of target, a boolean the
// file omits keeps its earlier value.
func mergeConfig(target, source *Config) {
	if source.Storage.DataDir != "" {
		target.Storage.DataDir = source.Storage.DataDir
	}
	if source.Storage.ConfigDir != "" {
		target.Storage.ConfigDir = source.Storage.ConfigDir
	}
	if source.Storage.LanceDir != "" {
		target.Storage.LanceDir = source.Storage.LanceDir
	}

	if source.GitHub.BaseURL != "" {
		target.GitHub.BaseURL = source.GitHub.BaseURL
	}
	if source.GitHub.PerPage != 0 {
		target.GitHub.PerPage = source.GitHub.PerPage
	}
	if source.GitHub.RequestTimeoutSeconds != 0 {
		target.GitHub.RequestTimeoutSeconds = source.GitHub.RequestTimeoutSeconds
	}

	if source.Search.VectorDimension != 0 {
		target.Search.VectorDimension = source.Search.VectorDimension
	}
	if source.Search.IVFPartitions != 0 {
		target.Search.IVFPartitions = source.Search.IVFPartitions
	}
	if source.Search.IVFSubVectors != 0 {
		target.Search.IVFSubVectors = source.Search.IVFSubVectors
	}
	if source.Search.MinRowsForIndex != 0 {
		target.Search.MinRowsForIndex = source.Search.MinRowsForIndex
	}

	target.Sync.DefaultFull = source.Sync.DefaultFull

	if source.UI.OutputFormat != "" {
		target.UI.OutputFormat = source.UI.OutputFormat
	}
	if source.UI.Color != "" {
		target.UI.Color = source.UI.Color
	}
	target.UI.Verbose = source.UI.Verbose

	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	target.Logging.IncludeTimestamp = source.Logging.IncludeTimestamp
}

// DefaultConfig returns the built-in configuration defaults, the
// values named by each field's `default` struct tag.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{},
		GitHub: GitHubConfig{
			BaseURL:               "https://api.github.com",
			PerPage:               100,
			RequestTimeoutSeconds: 30,
		},
		Search: SearchConfig{
			VectorDimension: 384,
			IVFPartitions:   8,
			MinRowsForIndex: 2000,
		},
		Sync: SyncConfig{DefaultFull: false},
		UI: UIConfig{
			OutputFormat: "text",
			Color:        "auto",
		},
		Logging: LoggingConfig{
			Level:            "info",
			IncludeTimestamp: true,
		},
	}
}

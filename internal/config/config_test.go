package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	globalDir := filepath.Join(t.TempDir(), "global")
	projectDir := filepath.Join(t.TempDir(), "project")
	m, err := NewManager(globalDir, projectDir)
	require.NoError(t, err)
	return m
}

// TestLoad_ReturnsDefaultsWhenNoFilesExist tests that Load falls back
// to DefaultConfig when neither the global nor the project config file
// exists on disk.
func TestLoad_ReturnsDefaultsWhenNoFilesExist(t *testing.T) {
	m := newTestManager(t)

	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, 100, cfg.GitHub.PerPage)
	assert.Equal(t, 384, cfg.Search.VectorDimension)
	assert.Equal(t, "text", cfg.UI.OutputFormat)
}

// TestLoad_ProjectOverridesGlobalOverridesDefaults tests the three-tier
// merge order: project values win over global values, which win over
// the built-in defaults.
func TestLoad_ProjectOverridesGlobalOverridesDefaults(t *testing.T) {
	m := newTestManager(t)

	globalYAML := "github:\n  base_url: https://github.example.com/api/v3\n  per_page: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(m.GlobalConfigPath, "config.yaml"), []byte(globalYAML), 0o644))

	projectYAML := "github:\n  per_page: 25\n"
	require.NoError(t, os.WriteFile(filepath.Join(m.ProjectConfigPath, "config.yaml"), []byte(projectYAML), 0o644))

	cfg, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://github.example.com/api/v3", cfg.GitHub.BaseURL)
	assert.Equal(t, 25, cfg.GitHub.PerPage)
}

// TestSaveToken_RoundTripsThroughSecureStore tests that a token saved
// via SaveToken is recovered by a subsequent Load, and that it never
// lands in the plain YAML config file.
func TestSaveToken_RoundTripsThroughSecureStore(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Load()
	require.NoError(t, err)
	require.NoError(t, m.SaveToken("ghp_supersecret"))

	reloaded, err := NewManager(m.GlobalConfigPath, m.ProjectConfigPath)
	require.NoError(t, err)
	cfg, err := reloaded.Load()
	require.NoError(t, err)

	assert.Equal(t, "ghp_supersecret", cfg.GitHub.Token)

	data, err := os.ReadFile(filepath.Join(m.GlobalConfigPath, "config.yaml"))
	if err == nil {
		assert.NotContains(t, string(data), "ghp_supersecret")
	}
}

// TestSaveGlobal_PersistsAcrossManagers tests that SaveGlobal writes a
// file a fresh Manager can read back.
func TestSaveGlobal_PersistsAcrossManagers(t *testing.T) {
	m := newTestManager(t)

	cfg := DefaultConfig()
	cfg.UI.OutputFormat = "json"
	require.NoError(t, m.SaveGlobal(cfg))

	reloaded, err := NewManager(m.GlobalConfigPath, m.ProjectConfigPath)
	require.NoError(t, err)
	loaded, err := reloaded.Load()
	require.NoError(t, err)

	assert.Equal(t, "json", loaded.UI.OutputFormat)
}

// TestGetConfig_NilBeforeLoad tests that GetConfig returns nil until
// Load has run once.
func TestGetConfig_NilBeforeLoad(t *testing.T) {
	m := newTestManager(t)
	assert.Nil(t, m.GetConfig())
}

// Package cliapp implements the gitdb CLI: a root cobra.Command plus
// one add<Noun>Commands method per subcommand group, built the way the
// teacher's internal/cli.App is built.
package cliapp

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlfshell/gitdb/internal/config"
	"github.com/hlfshell/gitdb/internal/embedding"
	"github.com/hlfshell/gitdb/internal/ghclient"
	"github.com/hlfshell/gitdb/internal/mcpserver"
	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ss"
	"github.com/hlfshell/gitdb/internal/storage/ts"
	"github.com/hlfshell/gitdb/internal/sync"
)

// App represents the gitdb CLI application.
type App struct {
	rootCmd   *cobra.Command
	version   string
	buildDate string
	gitCommit string

	configManager *config.Manager
	cfg           *config.Config
	githubToken   string

	ts *ts.Store
	ss *ss.Store
}

// NewApp creates a new CLI application with the given version
// information, mirroring cmd/cowork/main.go's cli.NewApp(...) call.
func NewApp(version, buildDate, gitCommit string) *App {
	app := &App{version: version, buildDate: buildDate, gitCommit: gitCommit}
	app.setupCommands()
	return app
}

// Run executes the root command with the given arguments (typically
// os.Args).
func (app *App) Run(args []string) error {
	app.rootCmd.SetArgs(args[1:])
	return app.rootCmd.Execute()
}

func (app *App) setupCommands() {
	app.rootCmd = &cobra.Command{
		Use:   "gitdb",
		Short: "Local-first mirror and search engine for GitHub repositories",
		Long: `gitdb — Local-first GitHub mirror and search engine

A Go-based CLI and MCP server that mirrors a GitHub repository's issues,
pull requests, and comments into a local transactional store, indexes
them for full-text and semantic search, and extracts cross-references
between items so related work can be traversed offline.`,
		Version: app.version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.ensureInitialized(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	app.rootCmd.PersistentFlags().String("github-token", "", "GitHub personal access token (or set GITDB_GITHUB_TOKEN)")

	app.addVersionCommand()
	app.addRegisterCommand()
	app.addListCommand()
	app.addSyncCommand()
	app.addSearchCommand()
	app.addRelatedCommand()
	app.addAuthCommands()
	app.addConfigCommands()
	app.addMCPCommands()
}

// ensureInitialized loads configuration and opens both stores on first
// use, skipped for commands that don't touch storage (version, help).
func (app *App) ensureInitialized(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "version", "help", "gitdb":
		return nil
	}
	if app.ts != nil {
		return nil
	}

	globalDir := os.Getenv("GITDB_CONFIG_DIR")
	if globalDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		globalDir = filepath.Join(home, ".config", "gitdb")
	}
	projectDir := filepath.Join(".", ".gitdb")

	manager, err := config.NewManager(globalDir, projectDir)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg, err := manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.configManager = manager
	app.cfg = cfg

	if token, _ := cmd.Flags().GetString("github-token"); token != "" {
		cfg.GitHub.Token = token
	}
	app.githubToken = cfg.GitHub.Token

	dataDir := os.Getenv("GITDB_DATA_DIR")
	if dataDir == "" {
		dataDir = cfg.Storage.DataDir
	}
	if dataDir == "" {
		dataDir = globalDir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tsStore, err := ts.Open(filepath.Join(dataDir, "gitdb.db"))
	if err != nil {
		return fmt.Errorf("failed to open transactional store: %w", err)
	}
	ssStore, err := ss.Open(filepath.Join(dataDir, "search.db"))
	if err != nil {
		return fmt.Errorf("failed to open search store: %w", err)
	}

	app.ts = tsStore
	app.ss = ssStore
	return nil
}

// embedDimension reads the configured embedding width, falling back to
// the package default when the config is unset or zero.
func (app *App) embedDimension() int {
	if app.cfg == nil || app.cfg.Search.VectorDimension <= 0 {
		return embedding.DefaultDimension
	}
	return app.cfg.Search.VectorDimension
}

// vectorSearchConfig builds a query/sync-time ss.VectorSearchConfig
// from the loaded Search config section, falling back to
// ss.DefaultVectorSearchConfig()'s values field by field when the
// config is unset or a knob is left at its zero value.
func (app *App) vectorSearchConfig() ss.VectorSearchConfig {
	defaults := ss.DefaultVectorSearchConfig()
	cfg := ss.VectorSearchConfig{Dimension: app.embedDimension(), Partitions: defaults.Partitions, MinRowsForIndex: defaults.MinRowsForIndex}
	if app.cfg == nil {
		return cfg
	}
	if app.cfg.Search.IVFPartitions > 0 {
		cfg.Partitions = app.cfg.Search.IVFPartitions
	}
	if app.cfg.Search.MinRowsForIndex > 0 {
		cfg.MinRowsForIndex = app.cfg.Search.MinRowsForIndex
	}
	return cfg
}

// syncEngine constructs a sync.Engine against app's stores, requiring
// a configured GitHub token.
func (app *App) syncEngine() (*sync.Engine, error) {
	if app.githubToken == "" {
		return nil, fmt.Errorf("no GitHub token configured: pass --github-token, set GITDB_GITHUB_TOKEN, or run `gitdb auth login`")
	}
	baseURL, timeout := "", time.Duration(0)
	if app.cfg != nil {
		baseURL = app.cfg.GitHub.BaseURL
		timeout = time.Duration(app.cfg.GitHub.RequestTimeoutSeconds) * time.Second
	}
	client, err := ghclient.New(app.githubToken, baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return sync.New(client, app.ts, app.ss, embedding.Stub(app.embedDimension()), nil), nil
}

func (app *App) queryEngine() *query.Engine {
	return query.New(app.ss, embedding.Stub(app.embedDimension()), app.vectorSearchConfig())
}

func (app *App) mcpServer() (*mcpserver.Server, error) {
	syncEngine, err := app.syncEngine()
	if err != nil {
		return nil, err
	}
	return mcpserver.New(syncEngine, app.queryEngine(), app.ts, nil), nil
}

func (app *App) addVersionCommand() {
	app.rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show detailed version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitdb version %s\n", app.version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", app.buildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", app.gitCommit)
		},
	})
}

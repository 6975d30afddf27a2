package cliapp

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hlfshell/gitdb/internal/config"
)

// addConfigCommands adds configuration management commands, following
// the teacher's global-then-project layering but over gitdb's much
// smaller, statically-typed Config struct rather than a free-form
// environment variable map.
func (app *App) addConfigCommands() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View and change gitdb's configuration",
		Long:  "Settings follow the priority: --github-token / env vars > project .gitdb/config.yaml > global config.yaml",
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.showConfig(cmd)
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.getConfigValue(cmd, args[0])
			},
		},
	)

	var global bool
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one configuration value",
		Long:  "Valid keys: storage.data_dir, github.base_url, github.per_page, github.request_timeout_seconds, search.vector_dimension, search.ivf_partitions, search.min_rows_for_index, sync.default_full, ui.output_format, ui.color, ui.verbose, logging.level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.setConfigValue(cmd, args[0], args[1], global)
		},
	}
	setCmd.Flags().BoolVar(&global, "global", false, "write to the global config file instead of the project one")
	configCmd.AddCommand(setCmd)

	app.rootCmd.AddCommand(configCmd)
}

func (app *App) showConfig(cmd *cobra.Command) error {
	cfg, err := app.configManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	redacted := *cfg
	redacted.GitHub.Token = ""
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func (app *App) getConfigValue(cmd *cobra.Command, key string) error {
	cfg, err := app.configManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	value, err := configField(cfg, key)
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func (app *App) setConfigValue(cmd *cobra.Command, key, value string, global bool) error {
	cfg, err := app.configManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := setConfigField(cfg, key, value); err != nil {
		return err
	}
	if global {
		err = app.configManager.SaveGlobal(cfg)
	} else {
		err = app.configManager.SaveProject(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func configField(cfg *config.Config, key string) (string, error) {
	switch key {
	case "storage.data_dir":
		return cfg.Storage.DataDir, nil
	case "github.base_url":
		return cfg.GitHub.BaseURL, nil
	case "github.per_page":
		return strconv.Itoa(cfg.GitHub.PerPage), nil
	case "github.request_timeout_seconds":
		return strconv.Itoa(cfg.GitHub.RequestTimeoutSeconds), nil
	case "search.vector_dimension":
		return strconv.Itoa(cfg.Search.VectorDimension), nil
	case "search.ivf_partitions":
		return strconv.Itoa(cfg.Search.IVFPartitions), nil
	case "search.min_rows_for_index":
		return strconv.Itoa(cfg.Search.MinRowsForIndex), nil
	case "sync.default_full":
		return strconv.FormatBool(cfg.Sync.DefaultFull), nil
	case "ui.output_format":
		return cfg.UI.OutputFormat, nil
	case "ui.color":
		return cfg.UI.Color, nil
	case "ui.verbose":
		return strconv.FormatBool(cfg.UI.Verbose), nil
	case "logging.level":
		return cfg.Logging.Level, nil
	default:
		return "", fmt.Errorf("unknown configuration key %q", key)
	}
}

func setConfigField(cfg *config.Config, key, value string) error {
	switch key {
	case "storage.data_dir":
		cfg.Storage.DataDir = value
	case "github.base_url":
		cfg.GitHub.BaseURL = value
	case "github.per_page":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("github.per_page must be an integer: %w", err)
		}
		cfg.GitHub.PerPage = n
	case "github.request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("github.request_timeout_seconds must be an integer: %w", err)
		}
		cfg.GitHub.RequestTimeoutSeconds = n
	case "search.vector_dimension":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("search.vector_dimension must be an integer: %w", err)
		}
		cfg.Search.VectorDimension = n
	case "search.ivf_partitions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("search.ivf_partitions must be an integer: %w", err)
		}
		cfg.Search.IVFPartitions = n
	case "search.min_rows_for_index":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("search.min_rows_for_index must be an integer: %w", err)
		}
		cfg.Search.MinRowsForIndex = n
	case "sync.default_full":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("sync.default_full must be true or false: %w", err)
		}
		cfg.Sync.DefaultFull = b
	case "ui.output_format":
		cfg.UI.OutputFormat = value
	case "ui.color":
		cfg.UI.Color = value
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.verbose must be true or false: %w", err)
		}
		cfg.UI.Verbose = b
	case "logging.level":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

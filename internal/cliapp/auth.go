package cliapp

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// addAuthCommands adds GitHub token management commands.
func (app *App) addAuthCommands() {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GitHub token used to sync repositories",
	}

	authCmd.AddCommand(
		&cobra.Command{
			Use:   "login",
			Short: "Store a GitHub personal access token for future syncs",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authLogin(cmd)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a GitHub token is currently configured",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authStatus(cmd)
			},
		},
	)

	app.rootCmd.AddCommand(authCmd)
}

func (app *App) authLogin(cmd *cobra.Command) error {
	cmd.Printf("GitHub personal access token: ")
	byteToken, err := term.ReadPassword(int(syscall.Stdin))
	cmd.Printf("\n")
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	token := string(byteToken)
	if token == "" {
		return fmt.Errorf("no token provided")
	}

	if err := app.configManager.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	app.githubToken = token
	cmd.Println("token saved")
	return nil
}

func (app *App) authStatus(cmd *cobra.Command) error {
	if os.Getenv("GITDB_GITHUB_TOKEN") != "" {
		cmd.Println("token configured via GITDB_GITHUB_TOKEN")
		return nil
	}
	if app.githubToken == "" {
		cmd.Println("no token configured")
		return nil
	}
	cmd.Println("token configured")
	return nil
}

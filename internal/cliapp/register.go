package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (app *App) addRegisterCommand() {
	var url string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a repository and run its initial sync",
		Long:  "Register a GitHub repository by URL or owner/name and run a full initial sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--url is required")
			}
			engine, err := app.syncEngine()
			if err != nil {
				return err
			}
			result, err := engine.SyncRepository(cmd.Context(), url, true)
			if err != nil {
				return fmt.Errorf("failed to register %s: %w", url, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", url)
			fmt.Fprintf(cmd.OutOrStdout(), "  issues synced:        %d\n", result.IssuesSynced)
			fmt.Fprintf(cmd.OutOrStdout(), "  pull requests synced: %d\n", result.PullRequestsSynced)
			if len(result.Errors) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  errors:\n")
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "    - %s\n", e)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "repository URL or owner/name specifier")
	app.rootCmd.AddCommand(cmd)
}

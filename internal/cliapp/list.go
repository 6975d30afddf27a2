package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

func (app *App) addListCommand() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Enumerate registered repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			var repos []string
			err := app.ts.View(func(tx *ts.Tx) error {
				all, err := tx.ListRepositories()
				if err != nil {
					return err
				}
				for _, r := range all {
					repos = append(repos, fmt.Sprintf("%s  (stars: %d, forks: %d)", r.FullName, r.Stars, r.Forks))
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to list repositories: %w", err)
			}
			if len(repos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no repositories registered")
				return nil
			}
			for _, line := range repos {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	app.rootCmd.AddCommand(cmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <owner/name>",
		Short: "Delete a registered repository and its local data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.deleteRepository(cmd, args[0])
		},
	}
	repoCmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage registered repositories",
	}
	repoCmd.AddCommand(deleteCmd)
	app.rootCmd.AddCommand(repoCmd)
}

func (app *App) deleteRepository(cmd *cobra.Command, fullName string) error {
	var repoID ids.RepositoryID
	if err := app.ts.Update(func(tx *ts.Tx) error {
		r, err := tx.GetRepositoryByFullName(fullName)
		if err != nil {
			return fmt.Errorf("repository %q not registered: %w", fullName, err)
		}
		repoID = r.ID
		return tx.DeleteRepository(r.ID)
	}); err != nil {
		return err
	}
	if err := app.ss.DeleteRepository(repoID); err != nil {
		return fmt.Errorf("failed to delete search index entries for %s: %w", fullName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", fullName)
	return nil
}

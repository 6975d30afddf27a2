package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlfshell/gitdb/internal/storage/ts"
)

func (app *App) addSyncCommand() {
	var repo string
	var full bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync one registered repository, or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := app.syncEngine()
			if err != nil {
				return err
			}

			specs, err := app.syncTargets(repo)
			if err != nil {
				return err
			}
			if len(specs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no repositories registered")
				return nil
			}

			for _, spec := range specs {
				result, err := engine.SyncRepository(cmd.Context(), spec, full)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", spec, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: issues=%d pull_requests=%d errors=%d\n",
					spec, result.IssuesSynced, result.PullRequestsSynced, len(result.Errors))
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", e)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "owner/name of the repository to sync; omit to sync every registered repository")
	cmd.Flags().BoolVar(&full, "full", false, "ignore the stored watermark and resync everything")
	app.rootCmd.AddCommand(cmd)
}

func (app *App) syncTargets(repo string) ([]string, error) {
	if repo != "" {
		return []string{repo}, nil
	}
	var specs []string
	err := app.ts.View(func(tx *ts.Tx) error {
		repos, err := tx.ListRepositories()
		if err != nil {
			return err
		}
		for _, r := range repos {
			specs = append(specs, r.FullName)
		}
		return nil
	})
	return specs, err
}

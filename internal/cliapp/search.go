package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

func (app *App) addSearchCommand() {
	var repo, state, label string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across repositories, issues, pull requests, and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var repoID *ids.RepositoryID
			if repo != "" {
				id, err := app.resolveRepositoryID(repo)
				if err != nil {
					return err
				}
				repoID = &id
			}

			results, err := app.queryEngine().Search(cmd.Context(), query.SearchQuery{
				Text:       args[0],
				Repository: repoID,
				State:      ids.IssueOrPullRequestState(state),
				Label:      label,
				Limit:      limit,
			})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %6.3f  %s\n", r.CanonicalID, r.Score, r.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "restrict results to this owner/name repository")
	cmd.Flags().StringVar(&state, "state", "", "restrict to issues/pull requests in this state: open, closed, or merged")
	cmd.Flags().StringVar(&label, "label", "", "restrict to issues/pull requests whose labels contain this substring")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results")
	app.rootCmd.AddCommand(cmd)
}

func (app *App) resolveRepositoryID(spec string) (ids.RepositoryID, error) {
	name, err := ids.ParseRepoSpecifier(spec)
	if err != nil {
		return 0, err
	}
	var repoID ids.RepositoryID
	err = app.ts.View(func(tx *ts.Tx) error {
		r, err := tx.GetRepositoryByFullName(name.FullName())
		if err != nil {
			return err
		}
		repoID = r.ID
		return nil
	})
	return repoID, err
}

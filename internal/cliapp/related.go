package cliapp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

func (app *App) addRelatedCommand() {
	var repo string
	var issueNumber, prNumber int64
	var linksOnly, semanticOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "related [owner/repo#N]",
		Short: "Find cross-references and semantically similar items for one issue or pull request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := resolveRelatedTarget(args, repo, issueNumber, prNumber)
			if err != nil {
				return err
			}

			repoID, err := app.resolveRepositoryID(ref.owner + "/" + ref.repo)
			if err != nil {
				return err
			}
			itemRef := ids.ItemRef{RepositoryID: repoID, Type: ref.itemType, Number: ref.number}

			body, err := app.itemBody(itemRef)
			if err != nil && ids.KindOf(err) != ids.KindNotFound {
				return err
			}

			result, err := app.queryEngine().FindRelated(cmd.Context(), app.ts, itemRef, body, query.RelatedOptions{
				Limit:        limit,
				LinksOnly:    linksOnly,
				SemanticOnly: semanticOnly,
			})
			if err != nil {
				return fmt.Errorf("find related items failed: %w", err)
			}

			printRelatedResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&repo, "repo", "", "owner/name of the repository the item belongs to")
	cmd.Flags().Int64Var(&issueNumber, "issue", 0, "issue number")
	cmd.Flags().Int64Var(&prNumber, "pr", 0, "pull request number")
	cmd.Flags().BoolVar(&linksOnly, "links-only", false, "only return cross-reference links")
	cmd.Flags().BoolVar(&semanticOnly, "semantic-only", false, "only return semantically similar items")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results per category")
	app.rootCmd.AddCommand(cmd)
}

type relatedTarget struct {
	owner, repo string
	itemType    ids.ItemType
	number      int64
}

// resolveRelatedTarget implements spec §6's two related-command forms:
// a positional "owner/repo#N" specifier, or --repo plus exactly one of
// --issue/--pr.
func resolveRelatedTarget(args []string, repo string, issueNumber, prNumber int64) (relatedTarget, error) {
	if len(args) == 1 {
		owner, name, itemType, number, err := parseShortRef(args[0])
		if err != nil {
			return relatedTarget{}, err
		}
		return relatedTarget{owner: owner, repo: name, itemType: itemType, number: number}, nil
	}

	if repo == "" {
		return relatedTarget{}, fmt.Errorf("either owner/repo#N or --repo is required")
	}
	name, err := ids.ParseRepoSpecifier(repo)
	if err != nil {
		return relatedTarget{}, err
	}
	switch {
	case issueNumber != 0 && prNumber != 0:
		return relatedTarget{}, fmt.Errorf("specify only one of --issue or --pr")
	case issueNumber != 0:
		return relatedTarget{owner: name.Owner, repo: name.Name, itemType: ids.ItemTypeIssue, number: issueNumber}, nil
	case prNumber != 0:
		return relatedTarget{owner: name.Owner, repo: name.Name, itemType: ids.ItemTypePullRequest, number: prNumber}, nil
	default:
		return relatedTarget{}, fmt.Errorf("one of --issue or --pr is required with --repo")
	}
}

// parseShortRef parses "owner/repo#N", defaulting the item type to
// Issue since the short-form specifier carries no type hint of its own
// (the same ambiguity the reference extractor resolves at sync time).
func parseShortRef(spec string) (owner, repo string, itemType ids.ItemType, number int64, err error) {
	parts := strings.SplitN(spec, "#", 2)
	if len(parts) != 2 {
		return "", "", "", 0, fmt.Errorf("expected owner/repo#N, got %q", spec)
	}
	name, parseErr := ids.ParseRepoSpecifier(parts[0])
	if parseErr != nil {
		return "", "", "", 0, parseErr
	}
	n, numErr := strconv.ParseInt(parts[1], 10, 64)
	if numErr != nil {
		return "", "", "", 0, fmt.Errorf("invalid item number %q: %w", parts[1], numErr)
	}
	return name.Owner, name.Name, ids.ItemTypeIssue, n, nil
}

func (app *App) itemBody(ref ids.ItemRef) (string, error) {
	var body string
	err := app.ts.View(func(tx *ts.Tx) error {
		switch ref.Type {
		case ids.ItemTypeIssue:
			issue, err := tx.GetIssueByNumber(ref.RepositoryID, ref.Number)
			if err != nil {
				return err
			}
			body = issue.Title + "\n" + issue.Body
		case ids.ItemTypePullRequest:
			pr, err := tx.GetPullRequestByNumber(ref.RepositoryID, ref.Number)
			if err != nil {
				return err
			}
			body = pr.Title + "\n" + pr.Body
		default:
			return ids.BadInput("related", fmt.Errorf("unsupported item type %q", ref.Type))
		}
		return nil
	})
	return body, err
}

func printRelatedResult(cmd *cobra.Command, result *query.RelatedResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "outgoing (%d):\n", len(result.Outgoing))
	for _, cr := range result.Outgoing {
		fmt.Fprintf(out, "  -> %s#%d (%s)\n", cr.TargetType, cr.TargetNumber, cr.LinkText)
	}
	fmt.Fprintf(out, "incoming (%d):\n", len(result.Incoming))
	for _, cr := range result.Incoming {
		fmt.Fprintf(out, "  <- %s#%d (%s)\n", cr.SourceType, cr.SourceID, cr.LinkText)
	}
	fmt.Fprintf(out, "similar (%d):\n", len(result.Similar))
	for _, s := range result.Similar {
		fmt.Fprintf(out, "  %-24s %6.3f  %s\n", s.CanonicalID, s.Score, s.Title)
	}
}

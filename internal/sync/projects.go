package sync

import (
	"context"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// ProjectsClient fetches a repository's GitHub Projects (v2) board and
// its items via GraphQL. original_source/src/services/sync.rs syncs
// Projects as a fourth resource when a repository opts in; gitdb
// supplements spec.md's REST-only resource list the same way, but only
// when a ProjectsClient is injected, since the GraphQL client itself
// is out of scope.
type ProjectsClient interface {
	ListProjects(ctx context.Context, owner, name string) ([]*model.Project, []*model.ProjectItem, error)
}

// syncProjects upserts every project and project item ListProjects
// returns for (owner, name), then back-fills ProjectIDs on the Issue
// or PullRequest each item names.
func (e *Engine) syncProjects(ctx context.Context, repoID ids.RepositoryID, name ids.RepositoryName) (int64, error) {
	projects, items, err := e.Projects.ListProjects(ctx, name.Owner, name.Name)
	if err != nil {
		return 0, err
	}

	for _, p := range projects {
		if err := e.TS.Update(func(tx *ts.Tx) error {
			return tx.SaveProject(p)
		}); err != nil {
			return 0, err
		}
	}

	var count int64
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if err := e.TS.Update(func(tx *ts.Tx) error {
			return tx.SaveProjectItem(item)
		}); err != nil {
			return count, err
		}
		if err := e.backfillProjectID(repoID, item); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// backfillProjectID adds item's ProjectID to the Issue or PullRequest
// it names, in both stores, if not already recorded. A project item
// naming a number with no local Issue or PullRequest is silently
// skipped; a later Projects sync back-fills it once that number has
// been synced.
func (e *Engine) backfillProjectID(repoID ids.RepositoryID, item *model.ProjectItem) error {
	switch item.ItemType {
	case ids.ItemTypeIssue:
		var issue *model.Issue
		err := e.TS.Update(func(tx *ts.Tx) error {
			found, err := tx.GetIssueByNumber(repoID, item.ItemID)
			if err != nil {
				return nil
			}
			if containsProjectID(found.ProjectIDs, item.ProjectID) {
				return nil
			}
			found.ProjectIDs = append(found.ProjectIDs, item.ProjectID)
			issue = found
			return tx.SaveIssue(found)
		})
		if err != nil || issue == nil {
			return err
		}
		return e.SS.UpsertIssue(issue, nil)

	case ids.ItemTypePullRequest:
		var pr *model.PullRequest
		err := e.TS.Update(func(tx *ts.Tx) error {
			found, err := tx.GetPullRequestByNumber(repoID, item.ItemID)
			if err != nil {
				return nil
			}
			if containsProjectID(found.ProjectIDs, item.ProjectID) {
				return nil
			}
			found.ProjectIDs = append(found.ProjectIDs, item.ProjectID)
			pr = found
			return tx.SavePullRequest(found)
		})
		if err != nil || pr == nil {
			return err
		}
		return e.SS.UpsertPullRequest(pr, nil)
	}
	return nil
}

func containsProjectID(existing []ids.ProjectID, id ids.ProjectID) bool {
	for _, e := range existing {
		if e == id {
			return true
		}
	}
	return false
}

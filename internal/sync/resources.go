package sync

import (
	"context"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// syncIssues pages through every issue updated since the resource's
// watermark (or all of them, when full), upserting each one plus its
// comments and running the reference extractor over every body.
func (e *Engine) syncIssues(ctx context.Context, repoID ids.RepositoryID, name ids.RepositoryName, full bool) (int64, error) {
	since := e.watermark(repoID, ids.ResourceIssues, full)

	var count int64
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		issues, nextPage, err := e.Client.ListIssues(ctx, name.Owner, name.Name, since, page)
		if err != nil {
			return count, err
		}

		for _, issue := range issues {
			issue.RepositoryID = repoID

			if err := e.persistIssue(issue); err != nil {
				return count, err
			}
			if err := e.syncIssueComments(ctx, name, issue); err != nil {
				return count, err
			}

			source := ids.ItemRef{RepositoryID: repoID, Type: ids.ItemTypeIssue, Number: issue.Number}
			e.extractAndLinkReferences(source, issue.Body)

			count++
		}

		if nextPage == 0 {
			break
		}
		page = nextPage
	}

	return count, nil
}

// syncPullRequests pages through pull requests. The GitHub API has no
// since parameter for PRs, so results are filtered in-process against
// the resource watermark, per spec §4.4 step 3b.
func (e *Engine) syncPullRequests(ctx context.Context, repoID ids.RepositoryID, name ids.RepositoryName, full bool) (int64, error) {
	since := e.watermark(repoID, ids.ResourcePullRequests, full)

	var count int64
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		prs, nextPage, err := e.Client.ListPullRequests(ctx, name.Owner, name.Name, page)
		if err != nil {
			return count, err
		}

		for _, pr := range prs {
			if !since.IsZero() && pr.UpdatedAt.Before(since) {
				continue
			}
			pr.RepositoryID = repoID

			if err := e.persistPullRequest(pr); err != nil {
				return count, err
			}
			if err := e.syncPullRequestComments(ctx, name, pr); err != nil {
				return count, err
			}

			source := ids.ItemRef{RepositoryID: repoID, Type: ids.ItemTypePullRequest, Number: pr.Number}
			e.extractAndLinkReferences(source, pr.Body)

			count++
		}

		if nextPage == 0 {
			break
		}
		page = nextPage
	}

	return count, nil
}

func (e *Engine) persistIssue(issue *model.Issue) error {
	if err := e.TS.Update(func(tx *ts.Tx) error {
		return tx.SaveIssue(issue)
	}); err != nil {
		return err
	}

	vec, _ := e.embedText(issue.Title + "\n" + issue.Body)
	return e.SS.UpsertIssue(issue, vec)
}

func (e *Engine) persistPullRequest(pr *model.PullRequest) error {
	if err := e.TS.Update(func(tx *ts.Tx) error {
		return tx.SavePullRequest(pr)
	}); err != nil {
		return err
	}

	vec, _ := e.embedText(pr.Title + "\n" + pr.Body)
	return e.SS.UpsertPullRequest(pr, vec)
}

func (e *Engine) syncIssueComments(ctx context.Context, name ids.RepositoryName, issue *model.Issue) error {
	page := 1
	for {
		comments, nextPage, err := e.Client.ListIssueComments(ctx, name.Owner, name.Name, int(issue.Number), page)
		if err != nil {
			return err
		}

		for _, c := range comments {
			c.IssueID = issue.ID

			if err := e.TS.Update(func(tx *ts.Tx) error {
				return tx.SaveIssueComment(c)
			}); err != nil {
				return err
			}
			vec, _ := e.embedText(c.Body)
			if err := e.SS.UpsertIssueComment(c, issue.RepositoryID, vec); err != nil {
				return err
			}

			source := ids.ItemRef{RepositoryID: issue.RepositoryID, Type: ids.ItemTypeIssue, Number: issue.Number}
			e.extractAndLinkReferences(source, c.Body)
		}

		if nextPage == 0 {
			break
		}
		page = nextPage
	}
	return nil
}

func (e *Engine) syncPullRequestComments(ctx context.Context, name ids.RepositoryName, pr *model.PullRequest) error {
	page := 1
	for {
		comments, nextPage, err := e.Client.ListPullRequestComments(ctx, name.Owner, name.Name, int(pr.Number), page)
		if err != nil {
			return err
		}

		for _, c := range comments {
			c.PullRequestID = pr.ID

			if err := e.TS.Update(func(tx *ts.Tx) error {
				return tx.SavePullRequestComment(c)
			}); err != nil {
				return err
			}
			vec, _ := e.embedText(c.Body)
			if err := e.SS.UpsertPullRequestComment(c, pr.RepositoryID, vec); err != nil {
				return err
			}

			source := ids.ItemRef{RepositoryID: pr.RepositoryID, Type: ids.ItemTypePullRequest, Number: pr.Number}
			e.extractAndLinkReferences(source, c.Body)
		}

		if nextPage == 0 {
			break
		}
		page = nextPage
	}
	return nil
}

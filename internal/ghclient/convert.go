package ghclient

import (
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

func convertRepository(r *github.Repository) *model.Repository {
	topics := make([]string, len(r.Topics))
	copy(topics, r.Topics)

	return &model.Repository{
		ID:          ids.RepositoryID(r.GetID()),
		Owner:       r.GetOwner().GetLogin(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Stars:       int64(r.GetStargazersCount()),
		Forks:       int64(r.GetForksCount()),
		Language:    r.GetLanguage(),
		Topics:      topics,
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}

func convertIssue(gi *github.Issue) *model.Issue {
	issue := &model.Issue{
		ID:            ids.IssueID(gi.GetID()),
		Number:        int64(gi.GetNumber()),
		Title:         gi.GetTitle(),
		Body:          gi.GetBody(),
		State:         convertState(gi.GetState()),
		Author:        gi.GetUser().GetLogin(),
		Assignees:     convertLogins(gi.Assignees),
		Labels:        convertLabelNames(gi.Labels),
		CreatedAt:     gi.GetCreatedAt().Time,
		UpdatedAt:     gi.GetUpdatedAt().Time,
		CommentsCount: int64(gi.GetComments()),
	}
	if gi.Milestone != nil {
		issue.MilestoneName = gi.Milestone.GetTitle()
	}
	if gi.ClosedAt != nil {
		t := gi.ClosedAt.Time
		issue.ClosedAt = &t
	}
	return issue
}

func convertPullRequest(gp *github.PullRequest) *model.PullRequest {
	pr := &model.PullRequest{
		ID:            ids.PullRequestID(gp.GetID()),
		Number:        int64(gp.GetNumber()),
		Title:         gp.GetTitle(),
		Body:          gp.GetBody(),
		State:         convertState(gp.GetState()),
		Author:        gp.GetUser().GetLogin(),
		Assignees:     convertLogins(gp.Assignees),
		Labels:        convertLabelNames(gp.Labels),
		CreatedAt:     gp.GetCreatedAt().Time,
		UpdatedAt:     gp.GetUpdatedAt().Time,
		CommentsCount: int64(gp.GetComments()),
		CommitsCount:  int64(gp.GetCommits()),
		Additions:     int64(gp.GetAdditions()),
		Deletions:     int64(gp.GetDeletions()),
		ChangedFiles:  int64(gp.GetChangedFiles()),
	}
	if gp.Milestone != nil {
		pr.MilestoneName = gp.Milestone.GetTitle()
	}
	if gp.Head != nil {
		pr.HeadRef = gp.Head.GetRef()
	}
	if gp.Base != nil {
		pr.BaseRef = gp.Base.GetRef()
	}
	if gp.ClosedAt != nil {
		t := gp.ClosedAt.Time
		pr.ClosedAt = &t
	}
	if gp.MergedAt != nil {
		t := gp.MergedAt.Time
		pr.MergedAt = &t
		pr.State = ids.StateMerged
	}
	return pr
}

func convertIssueComment(gc *github.IssueComment) *model.IssueComment {
	return &model.IssueComment{
		ID:        ids.CommentID("issue-comment-" + strconv.FormatInt(gc.GetID(), 10)),
		CommentID: gc.GetID(),
		Author:    gc.GetUser().GetLogin(),
		Body:      gc.GetBody(),
		CreatedAt: gc.GetCreatedAt().Time,
		UpdatedAt: gc.GetUpdatedAt().Time,
	}
}

func convertPullRequestComment(gc *github.PullRequestComment) *model.PullRequestComment {
	return &model.PullRequestComment{
		ID:        ids.CommentID("pr-comment-" + strconv.FormatInt(gc.GetID(), 10)),
		CommentID: gc.GetID(),
		Author:    gc.GetUser().GetLogin(),
		Body:      gc.GetBody(),
		CreatedAt: gc.GetCreatedAt().Time,
		UpdatedAt: gc.GetUpdatedAt().Time,
	}
}

func convertUser(gu *github.User) *model.User {
	if gu == nil {
		return nil
	}
	return &model.User{
		ID:        ids.UserID(gu.GetID()),
		Login:     gu.GetLogin(),
		Avatar:    gu.GetAvatarURL(),
		URL:       gu.GetHTMLURL(),
		UserType:  gu.GetType(),
		SiteAdmin: gu.GetSiteAdmin(),
	}
}

func convertLogins(users []*github.User) []string {
	if len(users) == 0 {
		return nil
	}
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.GetLogin()
	}
	return out
}

func convertLabelNames(labels []*github.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.GetName()
	}
	return out
}

func convertState(s string) ids.IssueOrPullRequestState {
	switch strings.ToLower(s) {
	case "closed":
		return ids.StateClosed
	default:
		return ids.StateOpen
	}
}

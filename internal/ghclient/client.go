// Package ghclient wraps github.com/google/go-github/v57 behind an
// interface scoped to what the sync engine needs: fetching a
// repository's metadata, paging through its issues and pull requests
// with a since watermark, and paging through comments on either. The
// convertGitHub* functions below map go-github's wire structs into
// gitdb's own model, the way the teacher's git provider layer maps a
// provider's types into its own generic git.Issue/git.PullRequest.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// Client is the subset of GitHub operations the sync engine drives.
// Callers already know which issue or pull request they're fetching
// comments for, so those methods don't echo the parent id back.
type Client interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	ListIssues(ctx context.Context, owner, name string, since time.Time, page int) (items []*model.Issue, nextPage int, err error)
	ListPullRequests(ctx context.Context, owner, name string, page int) (items []*model.PullRequest, nextPage int, err error)
	ListIssueComments(ctx context.Context, owner, name string, number int, page int) (items []*model.IssueComment, nextPage int, err error)
	ListPullRequestComments(ctx context.Context, owner, name string, number int, page int) (items []*model.PullRequestComment, nextPage int, err error)
}

// GitHubClient implements Client against the real GitHub API (or a
// GitHub Enterprise instance, via baseURL).
type GitHubClient struct {
	client *github.Client
}

// New constructs a GitHubClient authenticated with token. An empty
// baseURL targets github.com; anything else is treated as a GitHub
// Enterprise base URL.
func New(token, baseURL string, requestTimeout time.Duration) (*GitHubClient, error) {
	if token == "" {
		return nil, ids.BadInput("ghclient.New", fmt.Errorf("GitHub token is required"))
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	client := github.NewClient(httpClient).WithAuthToken(token)

	if baseURL != "" && baseURL != "https://api.github.com" {
		parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, ids.BadInput("ghclient.New", fmt.Errorf("invalid base URL: %w", err))
		}
		client.BaseURL = parsed
	}

	return &GitHubClient{client: client}, nil
}

func (c *GitHubClient) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, ids.Upstream("GetRepository", fmt.Errorf("get %s/%s: %w", owner, name, err))
	}
	return convertRepository(repo), nil
}

func (c *GitHubClient) ListIssues(ctx context.Context, owner, name string, since time.Time, page int) ([]*model.Issue, int, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100, Page: page},
	}
	if !since.IsZero() {
		opts.Since = since
	}

	githubIssues, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
	if err != nil {
		return nil, 0, ids.Upstream("ListIssues", fmt.Errorf("list issues %s/%s: %w", owner, name, err))
	}

	var out []*model.Issue
	for _, gi := range githubIssues {
		if gi.IsPullRequest() {
			continue
		}
		out = append(out, convertIssue(gi))
	}
	return out, resp.NextPage, nil
}

// ListPullRequests never filters by since server-side (the API lacks
// that parameter); the sync engine filters in-process against the
// locally stored UpdatedAt watermark instead.
func (c *GitHubClient) ListPullRequests(ctx context.Context, owner, name string, page int) ([]*model.PullRequest, int, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100, Page: page},
	}

	githubPRs, resp, err := c.client.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return nil, 0, ids.Upstream("ListPullRequests", fmt.Errorf("list pull requests %s/%s: %w", owner, name, err))
	}

	out := make([]*model.PullRequest, len(githubPRs))
	for i, gp := range githubPRs {
		out[i] = convertPullRequest(gp)
	}
	return out, resp.NextPage, nil
}

func (c *GitHubClient) ListIssueComments(ctx context.Context, owner, name string, number int, page int) ([]*model.IssueComment, int, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100, Page: page}}

	githubComments, resp, err := c.client.Issues.ListComments(ctx, owner, name, number, opts)
	if err != nil {
		return nil, 0, ids.Upstream("ListIssueComments", fmt.Errorf("list comments on %s/%s#%d: %w", owner, name, number, err))
	}

	out := make([]*model.IssueComment, len(githubComments))
	for i, gc := range githubComments {
		out[i] = convertIssueComment(gc)
	}
	return out, resp.NextPage, nil
}

func (c *GitHubClient) ListPullRequestComments(ctx context.Context, owner, name string, number int, page int) ([]*model.PullRequestComment, int, error) {
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100, Page: page}}

	githubComments, resp, err := c.client.PullRequests.ListComments(ctx, owner, name, number, opts)
	if err != nil {
		return nil, 0, ids.Upstream("ListPullRequestComments", fmt.Errorf("list comments on %s/%s#%d: %w", owner, name, number, err))
	}

	out := make([]*model.PullRequestComment, len(githubComments))
	for i, gc := range githubComments {
		out[i] = convertPullRequestComment(gc)
	}
	return out, resp.NextPage, nil
}

package ghclient

import (
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlfshell/gitdb/internal/ids"
)

// TestNew_RequiresToken tests that constructing a client without a
// token fails with BadInput.
func TestNew_RequiresToken(t *testing.T) {
	client, err := New("", "", 0)

	assert.Nil(t, client)
	assert.Equal(t, ids.KindBadInput, ids.KindOf(err))
}

// TestNew_InvalidBaseURL tests that a malformed Enterprise base URL is
// rejected rather than silently ignored.
func TestNew_InvalidBaseURL(t *testing.T) {
	client, err := New("test-token", "://not-a-url", 0)

	assert.Nil(t, client)
	assert.Equal(t, ids.KindBadInput, ids.KindOf(err))
}

// TestNew_DefaultsTimeoutAndBaseURL tests that an empty base URL and
// zero timeout fall back to github.com and 30s.
func TestNew_DefaultsTimeoutAndBaseURL(t *testing.T) {
	client, err := New("test-token", "", 0)

	require.NoError(t, err)
	require.NotNil(t, client)
}

// TestConvertIssue_MapsCoreFields tests the go-github -> model.Issue
// field mapping, including the milestone name and closed timestamp.
func TestConvertIssue_MapsCoreFields(t *testing.T) {
	closedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	gi := &github.Issue{
		ID:        github.Int64(42),
		Number:    github.Int(7),
		Title:     github.String("panic on shutdown"),
		Body:      github.String("steps to reproduce..."),
		State:     github.String("closed"),
		User:      &github.User{Login: github.String("alice")},
		Labels:    []*github.Label{{Name: github.String("bug")}},
		ClosedAt:  &github.Timestamp{Time: closedAt},
		Milestone: &github.Milestone{Title: github.String("v1.0")},
	}

	issue := convertIssue(gi)

	assert.Equal(t, ids.IssueID(42), issue.ID)
	assert.Equal(t, int64(7), issue.Number)
	assert.Equal(t, ids.StateClosed, issue.State)
	assert.Equal(t, "alice", issue.Author)
	assert.Equal(t, []string{"bug"}, issue.Labels)
	assert.Equal(t, "v1.0", issue.MilestoneName)
	require.NotNil(t, issue.ClosedAt)
	assert.True(t, issue.ClosedAt.Equal(closedAt))
}

// TestConvertPullRequest_MergedImpliesStateMerged tests that a
// populated MergedAt overrides the raw "closed" state with Merged,
// matching the data model's invariant.
func TestConvertPullRequest_MergedImpliesStateMerged(t *testing.T) {
	mergedAt := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	gp := &github.PullRequest{
		ID:       github.Int64(99),
		Number:   github.Int(3),
		Title:    github.String("fix race"),
		State:    github.String("closed"),
		User:     &github.User{Login: github.String("bob")},
		MergedAt: &github.Timestamp{Time: mergedAt},
		Head:     &github.PullRequestBranch{Ref: github.String("fix-branch")},
		Base:     &github.PullRequestBranch{Ref: github.String("main")},
	}

	pr := convertPullRequest(gp)

	assert.Equal(t, ids.StateMerged, pr.State)
	assert.True(t, pr.IsMerged())
	assert.Equal(t, "fix-branch", pr.HeadRef)
	assert.Equal(t, "main", pr.BaseRef)
}

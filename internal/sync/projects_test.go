package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlfshell/gitdb/internal/embedding"
	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/storage/ss"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// fakeProjectsClient implements ProjectsClient entirely in memory,
// mirroring fakeClient's style for ghclient.Client.
type fakeProjectsClient struct {
	projects []*model.Project
	items    []*model.ProjectItem
}

func (f *fakeProjectsClient) ListProjects(_ context.Context, _, _ string) ([]*model.Project, []*model.ProjectItem, error) {
	return f.projects, f.items, nil
}

// TestSyncRepository_ProjectsBackfillsProjectIDs tests that, when a
// ProjectsClient is injected, SyncRepository upserts Project/
// ProjectItem rows and back-fills ProjectIDs onto the Issue and
// PullRequest each item names.
func TestSyncRepository_ProjectsBackfillsProjectIDs(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "bug", UpdatedAt: now},
		},
		pullRequests: []*model.PullRequest{
			{ID: 20, Number: 2, Title: "fix", UpdatedAt: now},
		},
	}

	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })
	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "ss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	engine := New(client, tsStore, ssStore, embedding.Stub(16), nil)
	engine.Projects = &fakeProjectsClient{
		projects: []*model.Project{{ID: "PVT_1", Title: "Roadmap"}},
		items: []*model.ProjectItem{
			{ID: "PVT_1:issue:1", ProjectID: "PVT_1", ItemType: ids.ItemTypeIssue, ItemID: 1},
			{ID: "PVT_1:pull_request:2", ProjectID: "PVT_1", ItemType: ids.ItemTypePullRequest, ItemID: 2},
		},
	}

	_, err = engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)

	require.NoError(t, tsStore.View(func(tx *ts.Tx) error {
		issue, err := tx.GetIssueByNumber(1, 1)
		require.NoError(t, err)
		assert.Equal(t, []ids.ProjectID{"PVT_1"}, issue.ProjectIDs)

		pr, err := tx.GetPullRequestByNumber(1, 2)
		require.NoError(t, err)
		assert.Equal(t, []ids.ProjectID{"PVT_1"}, pr.ProjectIDs)

		project, err := tx.GetProject("PVT_1")
		require.NoError(t, err)
		assert.Equal(t, "Roadmap", project.Title)

		items, err := tx.ListProjectItems("PVT_1")
		require.NoError(t, err)
		assert.Len(t, items, 2)
		return nil
	}))
}

// TestSyncRepository_ProjectsSkippedWithoutClient tests that sync runs
// normally, recording no Projects SyncStatus, when no ProjectsClient is
// injected -- the default.
func TestSyncRepository_ProjectsSkippedWithoutClient(t *testing.T) {
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
	}
	engine := newTestEngine(t, client)

	_, err := engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)

	require.NoError(t, engine.TS.View(func(tx *ts.Tx) error {
		status, err := tx.GetLatestSyncStatus(1, ids.ResourceProjects)
		require.NoError(t, err)
		assert.Nil(t, status)
		return nil
	}))
}

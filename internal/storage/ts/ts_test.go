package ts

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestSaveAndGetRepository tests that a saved repository round-trips
// through Update/View and that GetRepositoryByFullName finds it without
// knowing its id.
func TestSaveAndGetRepository(t *testing.T) {
	store := openTestStore(t)

	repo := &model.Repository{
		ID:       1,
		Owner:    "tokio-rs",
		Name:     "tokio",
		FullName: "tokio-rs/tokio",
		Stars:    26000,
	}

	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.SaveRepository(repo)
	}))

	var got *model.Repository
	require.NoError(t, store.View(func(tx *Tx) error {
		var err error
		got, err = tx.GetRepository(1)
		return err
	}))
	assert.Equal(t, "tokio-rs/tokio", got.FullName)

	require.NoError(t, store.View(func(tx *Tx) error {
		var err error
		got, err = tx.GetRepositoryByFullName("tokio-rs/tokio")
		return err
	}))
	assert.Equal(t, ids.RepositoryID(1), got.ID)
}

// TestGetRepository_NotFound tests that an unregistered id returns a
// NotFound-kind error.
func TestGetRepository_NotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.View(func(tx *Tx) error {
		_, err := tx.GetRepository(999)
		return err
	})
	assert.Equal(t, ids.KindNotFound, ids.KindOf(err))
}

// TestDeleteRepository_CascadesAcrossBuckets tests that deleting a
// repository removes its issues, their comments, sync status rows, and
// any cross-reference naming it as source or target, all inside one
// transaction.
func TestDeleteRepository_CascadesAcrossBuckets(t *testing.T) {
	store := openTestStore(t)

	repo := &model.Repository{ID: 1, FullName: "tokio-rs/tokio"}
	other := &model.Repository{ID: 2, FullName: "rust-lang/rust"}
	issue := &model.Issue{ID: 10, RepositoryID: 1, Number: 5}
	comment := &model.IssueComment{ID: "c1", IssueID: 10}
	status := &model.SyncStatus{ID: "s1", RepositoryID: 1, ResourceType: ids.ResourceIssues, LastSyncedAt: time.Now()}
	cref := &model.CrossReference{
		ID: "ref1", SourceType: ids.ItemTypeIssue, SourceID: 10, SourceRepositoryID: 1,
		TargetType: ids.ItemTypeIssue, TargetRepositoryID: 2, TargetNumber: 7,
	}

	require.NoError(t, store.Update(func(tx *Tx) error {
		if err := tx.SaveRepository(repo); err != nil {
			return err
		}
		if err := tx.SaveRepository(other); err != nil {
			return err
		}
		if err := tx.SaveIssue(issue); err != nil {
			return err
		}
		if err := tx.SaveIssueComment(comment); err != nil {
			return err
		}
		if err := tx.SaveSyncStatus(status); err != nil {
			return err
		}
		return tx.SaveCrossReference(cref)
	}))

	require.NoError(t, store.Update(func(tx *Tx) error {
		return tx.DeleteRepository(1)
	}))

	err := store.View(func(tx *Tx) error {
		_, err := tx.GetRepository(1)
		return err
	})
	assert.Equal(t, ids.KindNotFound, ids.KindOf(err))

	require.NoError(t, store.View(func(tx *Tx) error {
		issues, err := tx.ListIssuesByRepository(1)
		assert.NoError(t, err)
		assert.Empty(t, issues)

		comments, err := tx.ListIssueComments(10)
		assert.NoError(t, err)
		assert.Empty(t, comments)

		statuses, err := tx.ListSyncStatusByRepository(1)
		assert.NoError(t, err)
		assert.Empty(t, statuses)

		incoming, err := tx.ListIncomingCrossReferences(2, ids.ItemTypeIssue, 7)
		assert.NoError(t, err)
		assert.Empty(t, incoming)
		return nil
	}))

	require.NoError(t, store.View(func(tx *Tx) error {
		_, err := tx.GetRepository(2)
		return err
	}))
}

// TestListIssuesByRepository_MultipleRepos tests that the
// by-repository index only returns issues for the requested repository.
func TestListIssuesByRepository_MultipleRepos(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Update(func(tx *Tx) error {
		for _, issue := range []*model.Issue{
			{ID: 1, RepositoryID: 1, Number: 1},
			{ID: 2, RepositoryID: 1, Number: 2},
			{ID: 3, RepositoryID: 2, Number: 1},
		} {
			if err := tx.SaveIssue(issue); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(func(tx *Tx) error {
		issues, err := tx.ListIssuesByRepository(1)
		require.NoError(t, err)
		assert.Len(t, issues, 2)

		issue, err := tx.GetIssueByNumber(2, 1)
		require.NoError(t, err)
		assert.Equal(t, ids.IssueID(3), issue.ID)
		return nil
	}))
}

// TestGetLatestSyncStatus_PicksMostRecent tests that of several status
// rows for the same resource, the one with the latest LastSyncedAt wins.
func TestGetLatestSyncStatus_PicksMostRecent(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.Update(func(tx *Tx) error {
		for _, s := range []*model.SyncStatus{
			{ID: "s1", RepositoryID: 1, ResourceType: ids.ResourceIssues, LastSyncedAt: now.Add(-time.Hour), Status: ids.SyncSuccess},
			{ID: "s2", RepositoryID: 1, ResourceType: ids.ResourceIssues, LastSyncedAt: now, Status: ids.SyncFailed},
			{ID: "s3", RepositoryID: 1, ResourceType: ids.ResourcePullRequests, LastSyncedAt: now, Status: ids.SyncSuccess},
		} {
			if err := tx.SaveSyncStatus(s); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.View(func(tx *Tx) error {
		latest, err := tx.GetLatestSyncStatus(1, ids.ResourceIssues)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, ids.SyncStatusID("s2"), latest.ID)
		return nil
	}))
}

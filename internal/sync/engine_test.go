package sync

import (
	"context"
	"fmt"
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

// fakeClient implements ghclient.Client entirely in memory so the
// engine's pagination, watermark, and cross-reference wiring can be
// exercised without a network call.
type fakeClient struct {
	repo            *model.Repository
	issues          []*model.Issue
	pullRequests    []*model.PullRequest
	issueComments   map[int64][]*model.IssueComment
	prComments      map[int64][]*model.PullRequestComment
	listIssuesCalls int
}

func (f *fakeClient) GetRepository(_ context.Context, owner, name string) (*model.Repository, error) {
	if f.repo == nil || f.repo.Owner != owner || f.repo.Name != name {
		return nil, ids.NotFound("GetRepository", fmt.Errorf("no such repo"))
	}
	cp := *f.repo
	return &cp, nil
}

func (f *fakeClient) ListIssues(_ context.Context, _, _ string, since time.Time, page int) ([]*model.Issue, int, error) {
	f.listIssuesCalls++
	if page != 1 {
		return nil, 0, nil
	}
	var out []*model.Issue
	for _, i := range f.issues {
		if since.IsZero() || i.UpdatedAt.After(since) {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, 0, nil
}

func (f *fakeClient) ListPullRequests(_ context.Context, _, _ string, page int) ([]*model.PullRequest, int, error) {
	if page != 1 {
		return nil, 0, nil
	}
	var out []*model.PullRequest
	for _, p := range f.pullRequests {
		cp := *p
		out = append(out, &cp)
	}
	return out, 0, nil
}

func (f *fakeClient) ListIssueComments(_ context.Context, _, _ string, number int, page int) ([]*model.IssueComment, int, error) {
	if page != 1 {
		return nil, 0, nil
	}
	return f.issueComments[int64(number)], 0, nil
}

func (f *fakeClient) ListPullRequestComments(_ context.Context, _, _ string, number int, page int) ([]*model.PullRequestComment, int, error) {
	if page != 1 {
		return nil, 0, nil
	}
	return f.prComments[int64(number)], 0, nil
}

func newTestEngine(t *testing.T, client *fakeClient) *Engine {
	t.Helper()
	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })

	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "ss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	return New(client, tsStore, ssStore, embedding.Stub(16), nil)
}

// TestSyncRepository_PersistsIssuesAndPullRequests tests that a sync
// run upserts the repository, its issues, and its pull requests into
// both stores and returns accurate counts.
func TestSyncRepository_PersistsIssuesAndPullRequests(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "panic on shutdown", UpdatedAt: now},
		},
		pullRequests: []*model.PullRequest{
			{ID: 20, Number: 2, Title: "fix race", UpdatedAt: now},
		},
	}
	engine := newTestEngine(t, client)

	result, err := engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int64(1), result.IssuesSynced)
	assert.Equal(t, int64(1), result.PullRequestsSynced)

	var stored *model.Issue
	require.NoError(t, engine.TS.View(func(tx *ts.Tx) error {
		var err error
		stored, err = tx.GetIssue(10)
		return err
	}))
	assert.Equal(t, "panic on shutdown", stored.Title)
	assert.Equal(t, ids.RepositoryID(1), stored.RepositoryID)
}

// TestSyncRepository_WatermarkSkipsUnchangedOnIncremental tests that a
// second, non-full sync only re-fetches issues updated after the first
// run's watermark.
func TestSyncRepository_WatermarkSkipsUnchangedOnIncremental(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour).UTC()
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "old issue", UpdatedAt: old},
		},
	}
	engine := newTestEngine(t, client)

	first, err := engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.IssuesSynced)

	second, err := engine.SyncRepository(context.Background(), "tokio-rs/tokio", false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.IssuesSynced)
}

// TestSyncRepository_CrossReferenceCreatedWhenTargetRegistered tests
// that an issue body referencing a locally registered repository
// produces a CrossReference row, per spec §4.4 step 3d.
func TestSyncRepository_CrossReferenceCreatedWhenTargetRegistered(t *testing.T) {
	now := time.Now().UTC()
	otherClient := &fakeClient{
		repo: &model.Repository{ID: 2, Owner: "other", Name: "repo", FullName: "other/repo"},
		pullRequests: []*model.PullRequest{
			{ID: 50, Number: 5, Title: "the referenced change", UpdatedAt: now},
		},
	}
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "see other/repo#5", Body: "duplicate of other/repo#5", UpdatedAt: now},
		},
	}

	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })
	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "ss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	engine := New(client, tsStore, ssStore, embedding.Stub(16), nil)

	// Register the target repository first, as the CLI's "register"
	// command would, so the extractor finds it locally.
	otherEngine := New(otherClient, tsStore, ssStore, embedding.Stub(16), nil)
	_, err = otherEngine.SyncRepository(context.Background(), "other/repo", true)
	require.NoError(t, err)

	_, err = engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)

	var refs []*model.CrossReference
	require.NoError(t, engine.TS.View(func(tx *ts.Tx) error {
		var err error
		refs, err = tx.ListOutgoingCrossReferences(1, ids.ItemTypeIssue, 1)
		return err
	}))
	require.Len(t, refs, 1)
	assert.Equal(t, ids.RepositoryID(2), refs[0].TargetRepositoryID)
	assert.Equal(t, int64(5), refs[0].TargetNumber)
	assert.Equal(t, ids.ItemTypePullRequest, refs[0].TargetType)
}

// TestSyncRepository_AmbiguousReferenceRetainsBothEdgesWhenBothExist
// tests spec §9(a)'s "when both exist, both edges are retained" rule:
// a short-form reference whose number matches both a local Issue and a
// local PullRequest produces two CrossReference rows, not one.
func TestSyncRepository_AmbiguousReferenceRetainsBothEdgesWhenBothExist(t *testing.T) {
	now := time.Now().UTC()
	otherClient := &fakeClient{
		repo: &model.Repository{ID: 2, Owner: "other", Name: "repo", FullName: "other/repo"},
		issues: []*model.Issue{
			{ID: 51, Number: 7, Title: "tracking issue", UpdatedAt: now},
		},
		pullRequests: []*model.PullRequest{
			{ID: 52, Number: 7, Title: "the fix", UpdatedAt: now},
		},
	}
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "see other/repo#7", Body: "relates to other/repo#7", UpdatedAt: now},
		},
	}

	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })
	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "ss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	otherEngine := New(otherClient, tsStore, ssStore, embedding.Stub(16), nil)
	_, err = otherEngine.SyncRepository(context.Background(), "other/repo", true)
	require.NoError(t, err)

	engine := New(client, tsStore, ssStore, embedding.Stub(16), nil)
	_, err = engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)

	var refs []*model.CrossReference
	require.NoError(t, engine.TS.View(func(tx *ts.Tx) error {
		var err error
		refs, err = tx.ListOutgoingCrossReferences(1, ids.ItemTypeIssue, 1)
		return err
	}))
	require.Len(t, refs, 2)
	var types []ids.ItemType
	for _, r := range refs {
		types = append(types, r.TargetType)
	}
	assert.Contains(t, types, ids.ItemTypeIssue)
	assert.Contains(t, types, ids.ItemTypePullRequest)
}

// TestSyncRepository_URLFormReferenceRecordedEvenWhenTargetNotSynced
// tests that a URL-form reference (unlike the ambiguous short form) is
// recorded against its named kind even when that item hasn't been
// synced into the target repository yet, per spec §4.3: the "concrete
// target exists" filter only applies to the ambiguous case.
func TestSyncRepository_URLFormReferenceRecordedEvenWhenTargetNotSynced(t *testing.T) {
	now := time.Now().UTC()
	otherClient := &fakeClient{
		repo: &model.Repository{ID: 2, Owner: "other", Name: "repo", FullName: "other/repo"},
	}
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "see link", Body: "see https://github.com/other/repo/issues/9 for context", UpdatedAt: now},
		},
	}

	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })
	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "ss.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	// Register the target repository but never sync its issues, so
	// issue #9 has no local row.
	otherEngine := New(otherClient, tsStore, ssStore, embedding.Stub(16), nil)
	_, err = otherEngine.SyncRepository(context.Background(), "other/repo", true)
	require.NoError(t, err)

	engine := New(client, tsStore, ssStore, embedding.Stub(16), nil)
	_, err = engine.SyncRepository(context.Background(), "tokio-rs/tokio", true)
	require.NoError(t, err)

	var refs []*model.CrossReference
	require.NoError(t, engine.TS.View(func(tx *ts.Tx) error {
		var err error
		refs, err = tx.ListOutgoingCrossReferences(1, ids.ItemTypeIssue, 1)
		return err
	}))
	require.Len(t, refs, 1)
	assert.Equal(t, ids.RepositoryID(2), refs[0].TargetRepositoryID)
	assert.Equal(t, int64(9), refs[0].TargetNumber)
	assert.Equal(t, ids.ItemTypeIssue, refs[0].TargetType)
}

// TestSyncRepository_UnknownRepositoryReturnsError tests that a
// repository GetRepository can't find surfaces as an error rather than
// a zero-value result.
func TestSyncRepository_UnknownRepositoryReturnsError(t *testing.T) {
	client := &fakeClient{repo: &model.Repository{ID: 1, Owner: "known", Name: "repo", FullName: "known/repo"}}
	engine := newTestEngine(t, client)

	_, err := engine.SyncRepository(context.Background(), "unknown/repo", true)
	assert.Error(t, err)
}

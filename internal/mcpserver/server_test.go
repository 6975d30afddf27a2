package mcpserver

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
	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ss"
	"github.com/hlfshell/gitdb/internal/storage/ts"
	"github.com/hlfshell/gitdb/internal/sync"
)

// fakeClient implements ghclient.Client entirely in memory, mirroring
// the sync package's own test double so the MCP tool handlers can be
// exercised without a network call.
type fakeClient struct {
	repo         *model.Repository
	issues       []*model.Issue
	pullRequests []*model.PullRequest
}

func (f *fakeClient) GetRepository(_ context.Context, owner, name string) (*model.Repository, error) {
	if f.repo == nil || f.repo.Owner != owner || f.repo.Name != name {
		return nil, ids.NotFound("GetRepository", fmt.Errorf("no such repo"))
	}
	cp := *f.repo
	return &cp, nil
}

func (f *fakeClient) ListIssues(_ context.Context, _, _ string, since time.Time, page int) ([]*model.Issue, int, error) {
	if page != 1 {
		return nil, 0, nil
	}
	var out []*model.Issue
	for _, i := range f.issues {
		cp := *i
		out = append(out, &cp)
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

func (f *fakeClient) ListIssueComments(_ context.Context, _, _ string, _ int, _ int) ([]*model.IssueComment, int, error) {
	return nil, 0, nil
}

func (f *fakeClient) ListPullRequestComments(_ context.Context, _, _ string, _ int, _ int) ([]*model.PullRequestComment, int, error) {
	return nil, 0, nil
}

func newTestServer(t *testing.T, client *fakeClient) *Server {
	t.Helper()
	tsStore, err := ts.Open(filepath.Join(t.TempDir(), "ts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tsStore.Close() })

	ssStore, err := ss.Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ssStore.Close() })

	embedder := embedding.Stub(16)
	syncEngine := sync.New(client, tsStore, ssStore, embedder, nil)
	queryEngine := query.New(ssStore, embedder, ss.VectorSearchConfig{})

	return New(syncEngine, queryEngine, tsStore, nil)
}

// TestRegisterRepository_RegistersAndSyncsInitialData tests that
// register_repository syncs a fresh repository end to end and returns
// its stored metadata alongside sync counts.
func TestRegisterRepository_RegistersAndSyncsInitialData(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio", Stars: 500},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "panic on shutdown", UpdatedAt: now},
		},
	}
	server := newTestServer(t, client)

	_, out, err := server.registerRepository(context.Background(), nil, RegisterRepositoryInput{URL: "tokio-rs/tokio"})
	require.NoError(t, err)
	require.NotNil(t, out.Repository)
	assert.Equal(t, "tokio-rs/tokio", out.Repository.FullName)
	assert.Equal(t, int64(1), out.IssuesSynced)
	assert.Empty(t, out.Errors)
}

// TestListRepositories_ReturnsEveryRegisteredRepository tests that
// list_repositories surfaces a repository registered by a prior call.
func TestListRepositories_ReturnsEveryRegisteredRepository(t *testing.T) {
	client := &fakeClient{repo: &model.Repository{ID: 1, Owner: "rust-lang", Name: "cargo", FullName: "rust-lang/cargo"}}
	server := newTestServer(t, client)

	_, _, err := server.registerRepository(context.Background(), nil, RegisterRepositoryInput{URL: "rust-lang/cargo"})
	require.NoError(t, err)

	_, out, err := server.listRepositories(context.Background(), nil, ListRepositoriesInput{})
	require.NoError(t, err)
	require.Len(t, out.Repositories, 1)
	assert.Equal(t, "rust-lang/cargo", out.Repositories[0].FullName)
}

// TestSyncRepositories_EmptyRepoFieldSyncsAllRegistered tests that
// omitting the repo field syncs every registered repository rather
// than failing or syncing nothing.
func TestSyncRepositories_EmptyRepoFieldSyncsAllRegistered(t *testing.T) {
	client := &fakeClient{repo: &model.Repository{ID: 1, Owner: "rust-lang", Name: "cargo", FullName: "rust-lang/cargo"}}
	server := newTestServer(t, client)

	_, _, err := server.registerRepository(context.Background(), nil, RegisterRepositoryInput{URL: "rust-lang/cargo"})
	require.NoError(t, err)

	_, out, err := server.syncRepositories(context.Background(), nil, SyncRepositoriesInput{})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "rust-lang/cargo", out.Results[0].Repository)
}

// TestSearchItems_FindsRegisteredIssueByTitle tests that search_items
// surfaces a synced issue matching the query text.
func TestSearchItems_FindsRegisteredIssueByTitle(t *testing.T) {
	now := time.Now().UTC()
	client := &fakeClient{
		repo: &model.Repository{ID: 1, Owner: "tokio-rs", Name: "tokio", FullName: "tokio-rs/tokio"},
		issues: []*model.Issue{
			{ID: 10, Number: 1, Title: "panic on shutdown under load", UpdatedAt: now},
		},
	}
	server := newTestServer(t, client)

	_, _, err := server.registerRepository(context.Background(), nil, RegisterRepositoryInput{URL: "tokio-rs/tokio"})
	require.NoError(t, err)

	_, out, err := server.searchItems(context.Background(), nil, SearchItemsInput{Query: "panic shutdown"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "issue:10", out.Results[0].CanonicalID)
}

// TestFindRelatedItems_LinksOnlyOnUnregisteredNumberReturnsEmpty
// exercises spec §8 scenario 6: find_related_items with links_only set
// on an item with no cross-references returns empty outgoing and
// incoming lists and no semantic results, without erroring even though
// the numbered item was never synced locally.
func TestFindRelatedItems_LinksOnlyOnUnregisteredNumberReturnsEmpty(t *testing.T) {
	client := &fakeClient{repo: &model.Repository{ID: 1, Owner: "rust-lang", Name: "rust", FullName: "rust-lang/rust"}}
	server := newTestServer(t, client)

	_, _, err := server.registerRepository(context.Background(), nil, RegisterRepositoryInput{URL: "rust-lang/rust"})
	require.NoError(t, err)

	_, out, err := server.findRelatedItems(context.Background(), nil, FindRelatedItemsInput{
		Repo: "rust-lang/rust", Number: 12345, LinksOnly: true,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Outgoing)
	assert.Empty(t, out.Incoming)
	assert.Empty(t, out.Similar)
}

package ts

import (
	"encoding/json"
	"fmt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveRepository upserts a repository row.
func (t *Tx) SaveRepository(r *model.Repository) error {
	if err := putJSON(t.tx, bucketRepositories, r.ID.ToKey(), r); err != nil {
		return ids.Storage("SaveRepository", err)
	}
	return nil
}

// GetRepository looks up a repository by id.
func (t *Tx) GetRepository(id ids.RepositoryID) (*model.Repository, error) {
	var r model.Repository
	found, err := getJSON(t.tx, bucketRepositories, id.ToKey(), &r)
	if err != nil {
		return nil, ids.Storage("GetRepository", err)
	}
	if !found {
		return nil, ids.NotFound("GetRepository", fmt.Errorf("repository %d not found", id))
	}
	return &r, nil
}

// GetRepositoryByFullName scans the repositories bucket for a matching
// owner/name pair. The bucket is small enough (one row per registered
// repository) that a full scan is appropriate, matching the teacher's
// filter-in-memory pattern for secondary lookups without an index.
func (t *Tx) GetRepositoryByFullName(fullName string) (*model.Repository, error) {
	b := t.tx.Bucket(bucketRepositories)
	var found *model.Repository
	err := b.ForEach(func(_, v []byte) error {
		var r model.Repository
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		if r.FullName == fullName {
			found = &r
		}
		return nil
	})
	if err != nil {
		return nil, ids.Storage("GetRepositoryByFullName", err)
	}
	if found == nil {
		return nil, ids.NotFound("GetRepositoryByFullName", fmt.Errorf("repository %q not registered", fullName))
	}
	return found, nil
}

// ListRepositories returns every registered repository.
func (t *Tx) ListRepositories() ([]*model.Repository, error) {
	b := t.tx.Bucket(bucketRepositories)
	var out []*model.Repository
	err := b.ForEach(func(_, v []byte) error {
		var r model.Repository
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		out = append(out, &r)
		return nil
	})
	if err != nil {
		return nil, ids.Storage("ListRepositories", err)
	}
	return out, nil
}

// DeleteRepository removes a repository and cascades the delete across
// every bucket that references it: issues, pull requests, their
// comments, sync status rows, and cross-references naming it as either
// source or target. It runs inside the caller's transaction, so the
// cascade is all-or-nothing.
func (t *Tx) DeleteRepository(id ids.RepositoryID) error {
	repo, err := t.GetRepository(id)
	if err != nil {
		return err
	}

	for _, key := range indexGet(t.tx, idxIssuesByRepo, id.ToKey()) {
		if err := deleteKey(t.tx, bucketIssues, key); err != nil {
			return ids.Storage("DeleteRepository", err)
		}
		for _, ck := range indexGet(t.tx, idxIssueCommentsByIss, key) {
			_ = deleteKey(t.tx, bucketIssueComments, ck)
		}
		_ = t.tx.Bucket(idxIssueCommentsByIss).Delete(key)
	}
	_ = t.tx.Bucket(idxIssuesByRepo).Delete(id.ToKey())

	for _, key := range indexGet(t.tx, idxPullRequestsByRepo, id.ToKey()) {
		if err := deleteKey(t.tx, bucketPullRequests, key); err != nil {
			return ids.Storage("DeleteRepository", err)
		}
		for _, ck := range indexGet(t.tx, idxPRCommentsByPR, key) {
			_ = deleteKey(t.tx, bucketPRComments, ck)
		}
		_ = t.tx.Bucket(idxPRCommentsByPR).Delete(key)
	}
	_ = t.tx.Bucket(idxPullRequestsByRepo).Delete(id.ToKey())

	for _, key := range indexGet(t.tx, idxSyncStatusByRepo, id.ToKey()) {
		_ = deleteKey(t.tx, bucketSyncStatus, key)
	}
	_ = t.tx.Bucket(idxSyncStatusByRepo).Delete(id.ToKey())

	if err := t.deleteCrossReferencesForRepository(id); err != nil {
		return err
	}

	_ = repo
	if err := deleteKey(t.tx, bucketRepositories, id.ToKey()); err != nil {
		return ids.Storage("DeleteRepository", err)
	}
	return nil
}

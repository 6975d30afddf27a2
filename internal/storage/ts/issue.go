package ts

import (
	"encoding/json"
	"fmt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveIssue upserts an issue row and maintains the by-repository index.
func (t *Tx) SaveIssue(issue *model.Issue) error {
	if err := putJSON(t.tx, bucketIssues, issue.ID.ToKey(), issue); err != nil {
		return ids.Storage("SaveIssue", err)
	}
	if err := indexAdd(t.tx, idxIssuesByRepo, issue.RepositoryID.ToKey(), issue.ID.ToKey()); err != nil {
		return ids.Storage("SaveIssue", err)
	}
	return nil
}

// GetIssue looks up an issue by id.
func (t *Tx) GetIssue(id ids.IssueID) (*model.Issue, error) {
	var issue model.Issue
	found, err := getJSON(t.tx, bucketIssues, id.ToKey(), &issue)
	if err != nil {
		return nil, ids.Storage("GetIssue", err)
	}
	if !found {
		return nil, ids.NotFound("GetIssue", fmt.Errorf("issue %d not found", id))
	}
	return &issue, nil
}

// GetIssueByNumber scans the repository's issue index for a matching
// GitHub-visible number.
func (t *Tx) GetIssueByNumber(repoID ids.RepositoryID, number int64) (*model.Issue, error) {
	for _, key := range indexGet(t.tx, idxIssuesByRepo, repoID.ToKey()) {
		var issue model.Issue
		data := t.tx.Bucket(bucketIssues).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &issue); err != nil {
			return nil, ids.Storage("GetIssueByNumber", err)
		}
		if issue.Number == number {
			return &issue, nil
		}
	}
	return nil, ids.NotFound("GetIssueByNumber", fmt.Errorf("issue #%d not found in repository %d", number, repoID))
}

// ListIssuesByRepository returns every issue belonging to repoID.
func (t *Tx) ListIssuesByRepository(repoID ids.RepositoryID) ([]*model.Issue, error) {
	var out []*model.Issue
	for _, key := range indexGet(t.tx, idxIssuesByRepo, repoID.ToKey()) {
		var issue model.Issue
		data := t.tx.Bucket(bucketIssues).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &issue); err != nil {
			return nil, ids.Storage("ListIssuesByRepository", err)
		}
		out = append(out, &issue)
	}
	return out, nil
}

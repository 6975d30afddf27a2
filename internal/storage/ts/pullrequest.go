package ts

import (
	"encoding/json"
	"fmt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SavePullRequest upserts a pull request row and maintains the
// by-repository index.
func (t *Tx) SavePullRequest(pr *model.PullRequest) error {
	if err := putJSON(t.tx, bucketPullRequests, pr.ID.ToKey(), pr); err != nil {
		return ids.Storage("SavePullRequest", err)
	}
	if err := indexAdd(t.tx, idxPullRequestsByRepo, pr.RepositoryID.ToKey(), pr.ID.ToKey()); err != nil {
		return ids.Storage("SavePullRequest", err)
	}
	return nil
}

// GetPullRequest looks up a pull request by id.
func (t *Tx) GetPullRequest(id ids.PullRequestID) (*model.PullRequest, error) {
	var pr model.PullRequest
	found, err := getJSON(t.tx, bucketPullRequests, id.ToKey(), &pr)
	if err != nil {
		return nil, ids.Storage("GetPullRequest", err)
	}
	if !found {
		return nil, ids.NotFound("GetPullRequest", fmt.Errorf("pull request %d not found", id))
	}
	return &pr, nil
}

// GetPullRequestByNumber scans the repository's pull request index for a
// matching GitHub-visible number.
func (t *Tx) GetPullRequestByNumber(repoID ids.RepositoryID, number int64) (*model.PullRequest, error) {
	for _, key := range indexGet(t.tx, idxPullRequestsByRepo, repoID.ToKey()) {
		var pr model.PullRequest
		data := t.tx.Bucket(bucketPullRequests).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &pr); err != nil {
			return nil, ids.Storage("GetPullRequestByNumber", err)
		}
		if pr.Number == number {
			return &pr, nil
		}
	}
	return nil, ids.NotFound("GetPullRequestByNumber", fmt.Errorf("pull request #%d not found in repository %d", number, repoID))
}

// ListPullRequestsByRepository returns every pull request belonging to repoID.
func (t *Tx) ListPullRequestsByRepository(repoID ids.RepositoryID) ([]*model.PullRequest, error) {
	var out []*model.PullRequest
	for _, key := range indexGet(t.tx, idxPullRequestsByRepo, repoID.ToKey()) {
		var pr model.PullRequest
		data := t.tx.Bucket(bucketPullRequests).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &pr); err != nil {
			return nil, ids.Storage("ListPullRequestsByRepository", err)
		}
		out = append(out, &pr)
	}
	return out, nil
}

package ts

import (
	"encoding/json"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveIssueComment upserts an issue comment row and maintains the
// by-issue index.
func (t *Tx) SaveIssueComment(c *model.IssueComment) error {
	if err := putJSON(t.tx, bucketIssueComments, c.ID.ToKey(), c); err != nil {
		return ids.Storage("SaveIssueComment", err)
	}
	if err := indexAdd(t.tx, idxIssueCommentsByIss, c.IssueID.ToKey(), c.ID.ToKey()); err != nil {
		return ids.Storage("SaveIssueComment", err)
	}
	return nil
}

// ListIssueComments returns every comment on the given issue.
func (t *Tx) ListIssueComments(issueID ids.IssueID) ([]*model.IssueComment, error) {
	var out []*model.IssueComment
	for _, key := range indexGet(t.tx, idxIssueCommentsByIss, issueID.ToKey()) {
		var c model.IssueComment
		data := t.tx.Bucket(bucketIssueComments).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, ids.Storage("ListIssueComments", err)
		}
		out = append(out, &c)
	}
	return out, nil
}

// SavePullRequestComment upserts a pull request comment row and
// maintains the by-pull-request index.
func (t *Tx) SavePullRequestComment(c *model.PullRequestComment) error {
	if err := putJSON(t.tx, bucketPRComments, c.ID.ToKey(), c); err != nil {
		return ids.Storage("SavePullRequestComment", err)
	}
	if err := indexAdd(t.tx, idxPRCommentsByPR, c.PullRequestID.ToKey(), c.ID.ToKey()); err != nil {
		return ids.Storage("SavePullRequestComment", err)
	}
	return nil
}

// ListPullRequestComments returns every comment on the given pull request.
func (t *Tx) ListPullRequestComments(prID ids.PullRequestID) ([]*model.PullRequestComment, error) {
	var out []*model.PullRequestComment
	for _, key := range indexGet(t.tx, idxPRCommentsByPR, prID.ToKey()) {
		var c model.PullRequestComment
		data := t.tx.Bucket(bucketPRComments).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, ids.Storage("ListPullRequestComments", err)
		}
		out = append(out, &c)
	}
	return out, nil
}

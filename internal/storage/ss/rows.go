package ss

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// joinNonEmpty builds the row-construction content a table's
// searchable_content column stores and the FTS5 index is built over:
// every non-empty part, space-joined, matching spec's "join(' ', ...)"
// rule per entity.
func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// canonicalData marshals v into the data column: the entity's
// canonical JSON, later hydrated back into a SearchResult's
// Body/State/Labels fields on a hit. Marshal failure degrades to an
// empty string rather than failing the whole upsert -- the row still
// indexes and vector-searches without it.
func canonicalData(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// UpsertRepository inserts or replaces a repository row, including its
// embedding if embedding is non-nil.
func (s *Store) UpsertRepository(r *model.Repository, embedding []float32) error {
	content := joinNonEmpty(r.FullName, r.Name, r.Owner, r.Description, r.Language, strings.Join(r.Topics, " "))
	_, err := s.db.Exec(`
		INSERT INTO repositories (id, owner, name, full_name, description, language, topics, stars, indexed_at, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner=excluded.owner, name=excluded.name, full_name=excluded.full_name,
			description=excluded.description, language=excluded.language, topics=excluded.topics,
			stars=excluded.stars, indexed_at=excluded.indexed_at,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, repositories.embedding)`,
		int64(r.ID), r.Owner, r.Name, r.FullName, r.Description, r.Language,
		strings.Join(r.Topics, ","), r.Stars, r.IndexedAt.Format(time.RFC3339),
		content, canonicalData(r), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertRepository", err)
	}
	return nil
}

// DeleteRepository removes a repository row; FOREIGN KEY ON DELETE
// CASCADE is not relied upon here, so callers that also drop TS rows
// should delete dependent SS rows (issues, PRs, comments) themselves.
func (s *Store) DeleteRepository(id ids.RepositoryID) error {
	_, err := s.db.Exec("DELETE FROM repositories WHERE id = ?", int64(id))
	if err != nil {
		return ids.Storage("DeleteRepository", err)
	}
	return nil
}

// UpsertIssue inserts or replaces an issue row.
func (s *Store) UpsertIssue(issue *model.Issue, embedding []float32) error {
	content := joinNonEmpty(issue.Title, "#"+strconv.FormatInt(issue.Number, 10), issue.Body,
		strings.Join(issue.Labels, " "), strings.Join(issue.Assignees, " "), issue.MilestoneName)
	_, err := s.db.Exec(`
		INSERT INTO issues (id, repository_id, number, title, body, state, author, labels, created_at, updated_at, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, state=excluded.state, author=excluded.author,
			labels=excluded.labels, updated_at=excluded.updated_at,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, issues.embedding)`,
		int64(issue.ID), int64(issue.RepositoryID), issue.Number, issue.Title, issue.Body,
		string(issue.State), issue.Author, strings.Join(issue.Labels, ","),
		issue.CreatedAt.Format(time.RFC3339), issue.UpdatedAt.Format(time.RFC3339),
		content, canonicalData(issue), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertIssue", err)
	}
	return nil
}

// UpsertPullRequest inserts or replaces a pull request row.
func (s *Store) UpsertPullRequest(pr *model.PullRequest, embedding []float32) error {
	content := joinNonEmpty(pr.Title, "#"+strconv.FormatInt(pr.Number, 10), pr.Body,
		strings.Join(pr.Labels, " "), strings.Join(pr.Assignees, " "), pr.MilestoneName)
	_, err := s.db.Exec(`
		INSERT INTO pull_requests (id, repository_id, number, title, body, state, author, labels, created_at, updated_at, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, state=excluded.state, author=excluded.author,
			labels=excluded.labels, updated_at=excluded.updated_at,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, pull_requests.embedding)`,
		int64(pr.ID), int64(pr.RepositoryID), pr.Number, pr.Title, pr.Body,
		string(pr.State), pr.Author, strings.Join(pr.Labels, ","),
		pr.CreatedAt.Format(time.RFC3339), pr.UpdatedAt.Format(time.RFC3339),
		content, canonicalData(pr), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertPullRequest", err)
	}
	return nil
}

// UpsertIssueComment inserts or replaces an issue comment row.
func (s *Store) UpsertIssueComment(c *model.IssueComment, repoID ids.RepositoryID, embedding []float32) error {
	content := joinNonEmpty(c.Body, c.Author)
	_, err := s.db.Exec(`
		INSERT INTO issue_comments (id, issue_id, repository_id, author, body, created_at, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author=excluded.author, body=excluded.body,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, issue_comments.embedding)`,
		string(c.ID), int64(c.IssueID), int64(repoID), c.Author, c.Body,
		c.CreatedAt.Format(time.RFC3339), content, canonicalData(c), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertIssueComment", err)
	}
	return nil
}

// UpsertPullRequestComment inserts or replaces a pull request comment row.
func (s *Store) UpsertPullRequestComment(c *model.PullRequestComment, repoID ids.RepositoryID, embedding []float32) error {
	content := joinNonEmpty(c.Body, c.Author)
	_, err := s.db.Exec(`
		INSERT INTO pr_comments (id, pull_request_id, repository_id, author, body, created_at, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author=excluded.author, body=excluded.body,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, pr_comments.embedding)`,
		string(c.ID), int64(c.PullRequestID), int64(repoID), c.Author, c.Body,
		c.CreatedAt.Format(time.RFC3339), content, canonicalData(c), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertPullRequestComment", err)
	}
	return nil
}

// UpsertUser inserts or replaces a user row, including its embedding
// if embedding is non-nil, so Users are reachable from vector search
// the same way Issues/PullRequests/Repositories are.
func (s *Store) UpsertUser(u *model.User, embedding []float32) error {
	content := joinNonEmpty(u.Login, u.UserType)
	_, err := s.db.Exec(`
		INSERT INTO users (id, login, user_type, searchable_content, data, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			login=excluded.login, user_type=excluded.user_type,
			searchable_content=excluded.searchable_content, data=excluded.data,
			embedding=COALESCE(excluded.embedding, users.embedding)`,
		int64(u.ID), u.Login, u.UserType, content, canonicalData(u), packEmbedding(embedding),
	)
	if err != nil {
		return ids.Storage("UpsertUser", err)
	}
	return nil
}

// packEmbedding lays out a vector as little-endian float32 words, the
// BLOB format every embedding column and the vector index fallback
// share.
func packEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func unpackEmbedding(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

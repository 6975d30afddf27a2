package ss

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hlfshell/gitdb/internal/ids"
)

// Hit is one full-text or vector match against a single entity table,
// scored and ready for the query engine's rank-fusion step. EntityKey
// carries the canonical string id for entities (comments) whose
// primary key isn't a plain int64; EntityID is left zero for those.
type Hit struct {
	EntityType   ids.ItemType
	EntityID     int64
	EntityKey    string
	RepositoryID ids.RepositoryID
	Title        string
	Snippet      string
	Score        float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Data is the entity's canonical JSON, the hydration source for a
	// SearchResult's Body/State/Labels fields.
	Data string
}

// SearchFilter narrows a Search Store query to rows matching all
// non-zero fields. RepositoryID is an exact match; State is an exact
// match against issues/pull_requests only (ignored by tables with no
// state column); Label matches by substring against the denormalized
// labels column, per spec §4.5's "label uses substring match, others
// exact" rule for the high-level search() form.
type SearchFilter struct {
	RepositoryID *ids.RepositoryID
	State        ids.IssueOrPullRequestState
	Label        string
}

func (f SearchFilter) whereClause(alias string, args *[]interface{}) string {
	var clauses []string
	if f.RepositoryID != nil {
		clauses = append(clauses, fmt.Sprintf("AND %s.repository_id = ?", alias))
		*args = append(*args, int64(*f.RepositoryID))
	}
	if f.State != "" {
		clauses = append(clauses, fmt.Sprintf("AND %s.state = ?", alias))
		*args = append(*args, string(f.State))
	}
	if f.Label != "" {
		clauses = append(clauses, fmt.Sprintf("AND %s.labels LIKE ?", alias))
		*args = append(*args, "%"+f.Label+"%")
	}
	var out string
	for _, c := range clauses {
		out += " " + c
	}
	return out
}

// SearchIssues runs an FTS5 MATCH query against issues, returning rows
// ordered by bm25 relevance (more negative bm25 score is more
// relevant; Score is negated so higher is always better, matching
// SearchResult's convention).
func (s *Store) SearchIssues(query string, filter SearchFilter, limit int) ([]Hit, error) {
	args := []interface{}{query}
	where := filter.whereClause("i", &args)
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT i.id, i.repository_id, i.title, snippet(issues_fts, 0, '', '', '...', 20),
		       bm25(issues_fts), i.created_at, i.updated_at, i.data
		FROM issues_fts
		JOIN issues i ON i.id = issues_fts.rowid
		WHERE issues_fts MATCH ? %s
		ORDER BY bm25(issues_fts)
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, ids.Storage("SearchIssues", err)
	}
	defer rows.Close()
	return scanHits(rows, ids.ItemTypeIssue)
}

// SearchPullRequests mirrors SearchIssues for pull_requests_fts.
func (s *Store) SearchPullRequests(query string, filter SearchFilter, limit int) ([]Hit, error) {
	args := []interface{}{query}
	where := filter.whereClause("p", &args)
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT p.id, p.repository_id, p.title, snippet(pull_requests_fts, 0, '', '', '...', 20),
		       bm25(pull_requests_fts), p.created_at, p.updated_at, p.data
		FROM pull_requests_fts
		JOIN pull_requests p ON p.id = pull_requests_fts.rowid
		WHERE pull_requests_fts MATCH ? %s
		ORDER BY bm25(pull_requests_fts)
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, ids.Storage("SearchPullRequests", err)
	}
	defer rows.Close()
	return scanHits(rows, ids.ItemTypePullRequest)
}

// SearchRepositories runs an FTS5 MATCH query against repositories_fts.
// Repositories carry no state or labels column, so only
// filter.RepositoryID applies.
func (s *Store) SearchRepositories(query string, filter SearchFilter, limit int) ([]Hit, error) {
	args := []interface{}{query}
	where := ""
	if filter.RepositoryID != nil {
		where = "AND r.id = ?"
		args = append(args, int64(*filter.RepositoryID))
	}
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT r.id, r.id, r.full_name, snippet(repositories_fts, 0, '', '', '...', 20),
		       bm25(repositories_fts), r.indexed_at, r.indexed_at, r.data
		FROM repositories_fts
		JOIN repositories r ON r.id = repositories_fts.rowid
		WHERE repositories_fts MATCH ? %s
		ORDER BY bm25(repositories_fts)
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, ids.Storage("SearchRepositories", err)
	}
	defer rows.Close()
	return scanHits(rows, ids.ItemTypeRepository)
}

// SearchIssueComments runs an FTS5 MATCH query against issue comment
// bodies. Title is left empty; Snippet carries the matched excerpt.
// Comments carry no state or labels column, so only
// filter.RepositoryID applies.
func (s *Store) SearchIssueComments(query string, filter SearchFilter, limit int) ([]Hit, error) {
	args := []interface{}{query}
	where := ""
	if filter.RepositoryID != nil {
		where = "AND c.repository_id = ?"
		args = append(args, int64(*filter.RepositoryID))
	}
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT c.id, c.repository_id, snippet(issue_comments_fts, 0, '', '', '...', 20),
		       bm25(issue_comments_fts), c.created_at, c.created_at, c.data
		FROM issue_comments_fts
		JOIN issue_comments c ON c.rowid = issue_comments_fts.rowid
		WHERE issue_comments_fts MATCH ? %s
		ORDER BY bm25(issue_comments_fts)
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, ids.Storage("SearchIssueComments", err)
	}
	defer rows.Close()
	return scanCommentHits(rows, ids.ItemTypeComment)
}

// SearchPullRequestComments mirrors SearchIssueComments for pr_comments_fts.
func (s *Store) SearchPullRequestComments(query string, filter SearchFilter, limit int) ([]Hit, error) {
	args := []interface{}{query}
	where := ""
	if filter.RepositoryID != nil {
		where = "AND c.repository_id = ?"
		args = append(args, int64(*filter.RepositoryID))
	}
	args = append(args, limit)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT c.id, c.repository_id, snippet(pr_comments_fts, 0, '', '', '...', 20),
		       bm25(pr_comments_fts), c.created_at, c.created_at, c.data
		FROM pr_comments_fts
		JOIN pr_comments c ON c.rowid = pr_comments_fts.rowid
		WHERE pr_comments_fts MATCH ? %s
		ORDER BY bm25(pr_comments_fts)
		LIMIT ?`, where), args...)
	if err != nil {
		return nil, ids.Storage("SearchPullRequestComments", err)
	}
	defer rows.Close()
	return scanCommentHits(rows, ids.ItemTypeComment)
}

// SearchAll runs the full-text query against the repositories, issues,
// pull requests, and both comment tables (users_fts is not queried)
// and merges the results by score, the "search_all" operation spec
// §4.5 calls "run FTS against each entity table, union."
func (s *Store) SearchAll(query string, filter SearchFilter, limit int) ([]Hit, error) {
	repoHits, err := s.SearchRepositories(query, filter, limit)
	if err != nil {
		return nil, err
	}
	issueHits, err := s.SearchIssues(query, filter, limit)
	if err != nil {
		return nil, err
	}
	prHits, err := s.SearchPullRequests(query, filter, limit)
	if err != nil {
		return nil, err
	}
	issueCommentHits, err := s.SearchIssueComments(query, filter, limit)
	if err != nil {
		return nil, err
	}
	prCommentHits, err := s.SearchPullRequestComments(query, filter, limit)
	if err != nil {
		return nil, err
	}

	all := append(repoHits, issueHits...)
	all = append(all, prHits...)
	all = append(all, issueCommentHits...)
	all = append(all, prCommentHits...)
	sortHitsByScore(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func scanHits(rows *sql.Rows, entityType ids.ItemType) ([]Hit, error) {
	var out []Hit
	for rows.Next() {
		var h Hit
		var createdAt, updatedAt string
		var bm25 float64
		if err := rows.Scan(&h.EntityID, &h.RepositoryID, &h.Title, &h.Snippet, &bm25, &createdAt, &updatedAt, &h.Data); err != nil {
			return nil, ids.Storage("scanHits", err)
		}
		h.EntityType = entityType
		h.Score = -bm25
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		h.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, ids.Storage("scanHits", err)
	}
	return out, nil
}

func scanCommentHits(rows *sql.Rows, entityType ids.ItemType) ([]Hit, error) {
	var out []Hit
	for rows.Next() {
		var h Hit
		var createdAt, updatedAt string
		var bm25 float64
		if err := rows.Scan(&h.EntityKey, &h.RepositoryID, &h.Snippet, &bm25, &createdAt, &updatedAt, &h.Data); err != nil {
			return nil, ids.Storage("scanCommentHits", err)
		}
		h.EntityType = entityType
		h.Score = -bm25
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		h.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, ids.Storage("scanCommentHits", err)
	}
	return out, nil
}

func sortHitsByScore(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// Package ss implements the Search Store: the columnar, query-optimized
// index gitdb rebuilds from the Transactional Store's data, backed by
// modernc.org/sqlite (a pure Go driver, no cgo). One table per entity
// carries the columns full-text and vector search need -- including a
// searchable_content column (the row-construction join the FTS5 index
// is built over) and a data column (the entity's canonical JSON,
// hydrated back into a SearchResult after a hit) -- plus an embedding
// BLOB for vector search. FTS5 virtual tables mirror searchable_content
// and are kept in sync with triggers so callers never maintain the
// index by hand.
package ss

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hlfshell/gitdb/internal/ids"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

CREATE TABLE IF NOT EXISTS repositories (
    id INTEGER PRIMARY KEY,
    owner TEXT NOT NULL,
    name TEXT NOT NULL,
    full_name TEXT NOT NULL UNIQUE,
    description TEXT,
    language TEXT,
    topics TEXT,
    stars INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS idx_repositories_full_name ON repositories(full_name);

CREATE TABLE IF NOT EXISTS issues (
    id INTEGER PRIMARY KEY,
    repository_id INTEGER NOT NULL,
    number INTEGER NOT NULL,
    title TEXT NOT NULL,
    body TEXT,
    state TEXT NOT NULL,
    author TEXT,
    labels TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS idx_issues_repository_id ON issues(repository_id);
CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state);

CREATE TABLE IF NOT EXISTS pull_requests (
    id INTEGER PRIMARY KEY,
    repository_id INTEGER NOT NULL,
    number INTEGER NOT NULL,
    title TEXT NOT NULL,
    body TEXT,
    state TEXT NOT NULL,
    author TEXT,
    labels TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS idx_pull_requests_repository_id ON pull_requests(repository_id);
CREATE INDEX IF NOT EXISTS idx_pull_requests_state ON pull_requests(state);

CREATE TABLE IF NOT EXISTS issue_comments (
    id TEXT PRIMARY KEY,
    issue_id INTEGER NOT NULL,
    repository_id INTEGER NOT NULL,
    author TEXT,
    body TEXT,
    created_at TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS idx_issue_comments_issue_id ON issue_comments(issue_id);

CREATE TABLE IF NOT EXISTS pr_comments (
    id TEXT PRIMARY KEY,
    pull_request_id INTEGER NOT NULL,
    repository_id INTEGER NOT NULL,
    author TEXT,
    body TEXT,
    created_at TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS idx_pr_comments_pull_request_id ON pr_comments(pull_request_id);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    login TEXT NOT NULL UNIQUE,
    user_type TEXT,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    embedding BLOB
);

-- Schema-symmetry only: no SPEC_FULL.md sync path populates this table.
-- gitdb never clones or indexes a repository's working tree; it is kept
-- so the Search Store's table set lines up with the data model's
-- illustrative on-disk layout without claiming a feature that isn't built.
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY,
    repository_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    searchable_content TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS repositories_fts USING fts5(
    searchable_content,
    content='repositories', content_rowid='id'
);
CREATE TRIGGER IF NOT EXISTS repositories_ai AFTER INSERT ON repositories BEGIN
    INSERT INTO repositories_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS repositories_ad AFTER DELETE ON repositories BEGIN
    INSERT INTO repositories_fts(repositories_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS repositories_au AFTER UPDATE ON repositories BEGIN
    INSERT INTO repositories_fts(repositories_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
    INSERT INTO repositories_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS issues_fts USING fts5(
    searchable_content,
    content='issues', content_rowid='id'
);
CREATE TRIGGER IF NOT EXISTS issues_ai AFTER INSERT ON issues BEGIN
    INSERT INTO issues_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS issues_ad AFTER DELETE ON issues BEGIN
    INSERT INTO issues_fts(issues_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS issues_au AFTER UPDATE ON issues BEGIN
    INSERT INTO issues_fts(issues_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
    INSERT INTO issues_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS pull_requests_fts USING fts5(
    searchable_content,
    content='pull_requests', content_rowid='id'
);
CREATE TRIGGER IF NOT EXISTS pull_requests_ai AFTER INSERT ON pull_requests BEGIN
    INSERT INTO pull_requests_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS pull_requests_ad AFTER DELETE ON pull_requests BEGIN
    INSERT INTO pull_requests_fts(pull_requests_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS pull_requests_au AFTER UPDATE ON pull_requests BEGIN
    INSERT INTO pull_requests_fts(pull_requests_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
    INSERT INTO pull_requests_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS issue_comments_fts USING fts5(
    searchable_content, content='issue_comments', content_rowid='rowid'
);
CREATE TRIGGER IF NOT EXISTS issue_comments_ai AFTER INSERT ON issue_comments BEGIN
    INSERT INTO issue_comments_fts(rowid, searchable_content) VALUES (new.rowid, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS issue_comments_ad AFTER DELETE ON issue_comments BEGIN
    INSERT INTO issue_comments_fts(issue_comments_fts, rowid, searchable_content) VALUES ('delete', old.rowid, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS issue_comments_au AFTER UPDATE ON issue_comments BEGIN
    INSERT INTO issue_comments_fts(issue_comments_fts, rowid, searchable_content) VALUES ('delete', old.rowid, old.searchable_content);
    INSERT INTO issue_comments_fts(rowid, searchable_content) VALUES (new.rowid, new.searchable_content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS pr_comments_fts USING fts5(
    searchable_content, content='pr_comments', content_rowid='rowid'
);
CREATE TRIGGER IF NOT EXISTS pr_comments_ai AFTER INSERT ON pr_comments BEGIN
    INSERT INTO pr_comments_fts(rowid, searchable_content) VALUES (new.rowid, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS pr_comments_ad AFTER DELETE ON pr_comments BEGIN
    INSERT INTO pr_comments_fts(pr_comments_fts, rowid, searchable_content) VALUES ('delete', old.rowid, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS pr_comments_au AFTER UPDATE ON pr_comments BEGIN
    INSERT INTO pr_comments_fts(pr_comments_fts, rowid, searchable_content) VALUES ('delete', old.rowid, old.searchable_content);
    INSERT INTO pr_comments_fts(rowid, searchable_content) VALUES (new.rowid, new.searchable_content);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS users_fts USING fts5(
    searchable_content, content='users', content_rowid='id'
);
CREATE TRIGGER IF NOT EXISTS users_ai AFTER INSERT ON users BEGIN
    INSERT INTO users_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS users_ad AFTER DELETE ON users BEGIN
    INSERT INTO users_fts(users_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
END;
CREATE TRIGGER IF NOT EXISTS users_au AFTER UPDATE ON users BEGIN
    INSERT INTO users_fts(users_fts, rowid, searchable_content) VALUES ('delete', old.id, old.searchable_content);
    INSERT INTO users_fts(rowid, searchable_content) VALUES (new.id, new.searchable_content);
END;
`

// Store wraps a *sql.DB opened against modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the search store at path with WAL
// journaling and foreign keys enabled, then ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, ids.Storage("ss.Open", fmt.Errorf("open %s: %w", path, err))
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, ids.Storage("ss.Open", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	return nil
}

// DB returns the underlying *sql.DB, for callers (like the vector index
// fallback) that need direct query access the typed helpers don't cover.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return ids.Storage("ss.Close", err)
	}
	return nil
}

// Package ts implements the Transactional Store: the primary,
// strongly-consistent record of every entity gitdb knows about, backed
// by a single bbolt database file. Each Store.Update call is one bbolt
// transaction that commits completely or not at all; the sync engine
// writes each repository, issue, pull request, and comment in its own
// Update, so an interrupted sync run keeps the rows it had already
// written. One top-level bucket holds each entity type, keyed by its id;
// secondary-index buckets map a foreign key to a set of primary keys
// so repository-scoped listing and cascading delete don't require a
// full bucket scan.
package ts

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

var (
	bucketRepositories  = []byte("repositories")
	bucketIssues        = []byte("issues")
	bucketPullRequests  = []byte("pull_requests")
	bucketIssueComments = []byte("issue_comments")
	bucketPRComments    = []byte("pr_comments")
	bucketUsers         = []byte("users")
	bucketSyncStatus    = []byte("sync_status")
	bucketCrossRefs     = []byte("cross_references")
	bucketProjects      = []byte("projects")
	bucketProjectItems  = []byte("project_items")
	bucketParticipants  = []byte("participants")

	// Secondary indexes: foreign key -> newline-joined set of primary keys.
	idxIssuesByRepo        = []byte("idx_issues_by_repo")
	idxPullRequestsByRepo  = []byte("idx_pull_requests_by_repo")
	idxIssueCommentsByIss  = []byte("idx_issue_comments_by_issue")
	idxPRCommentsByPR      = []byte("idx_pr_comments_by_pr")
	idxSyncStatusByRepo    = []byte("idx_sync_status_by_repo")
	idxCrossRefsBySource   = []byte("idx_cross_refs_by_source")
	idxCrossRefsByTarget   = []byte("idx_cross_refs_by_target")
	idxProjectItemsByProj  = []byte("idx_project_items_by_project")
)

var allBuckets = [][]byte{
	bucketRepositories, bucketIssues, bucketPullRequests, bucketIssueComments,
	bucketPRComments, bucketUsers, bucketSyncStatus, bucketCrossRefs,
	bucketProjects, bucketProjectItems, bucketParticipants,
	idxIssuesByRepo, idxPullRequestsByRepo, idxIssueCommentsByIss,
	idxPRCommentsByPR, idxSyncStatusByRepo, idxCrossRefsBySource,
	idxCrossRefsByTarget, idxProjectItemsByProj,
}

// Store wraps a *bbolt.DB and exposes typed, entity-aware transactions.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the bbolt database at path and
// ensures every bucket the store needs exists.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, ids.Storage("ts.Open", fmt.Errorf("open %s: %w", path, err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, ids.Storage("ts.Open", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return ids.Storage("ts.Close", err)
	}
	return nil
}

// Tx wraps a single bbolt.Tx with the entity-aware helpers defined in
// the rest of this package.
type Tx struct {
	tx *bbolt.Tx
}

// Update runs fn inside one read-write bbolt transaction, committing on
// a nil return and rolling back otherwise.
func (s *Store) Update(fn func(*Tx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&Tx{tx: btx})
	})
}

// View runs fn inside one read-only bbolt transaction.
func (s *Store) View(fn func(*Tx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&Tx{tx: btx})
	})
}

func putJSON(tx *bbolt.Tx, bucket, key []byte, v interface{}) error {
	b := tx.Bucket(bucket)
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	return b.Put(key, data)
}

func getJSON(tx *bbolt.Tx, bucket, key []byte, v interface{}) (bool, error) {
	b := tx.Bucket(bucket)
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", bucket, err)
	}
	return true, nil
}

func deleteKey(tx *bbolt.Tx, bucket, key []byte) error {
	return tx.Bucket(bucket).Delete(key)
}

// indexAdd appends primaryKey to the set stored under idxKey in idxBucket.
func indexAdd(tx *bbolt.Tx, idxBucket, idxKey, primaryKey []byte) error {
	b := tx.Bucket(idxBucket)
	existing := b.Get(idxKey)
	set := splitKeySet(existing)
	for _, k := range set {
		if string(k) == string(primaryKey) {
			return nil
		}
	}
	set = append(set, primaryKey)
	return b.Put(idxKey, joinKeySet(set))
}

// indexRemove drops primaryKey from the set stored under idxKey.
func indexRemove(tx *bbolt.Tx, idxBucket, idxKey, primaryKey []byte) error {
	b := tx.Bucket(idxBucket)
	existing := b.Get(idxKey)
	set := splitKeySet(existing)
	out := set[:0]
	for _, k := range set {
		if string(k) != string(primaryKey) {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return b.Delete(idxKey)
	}
	return b.Put(idxKey, joinKeySet(out))
}

// indexGet returns the set of primary keys stored under idxKey.
func indexGet(tx *bbolt.Tx, idxBucket, idxKey []byte) [][]byte {
	b := tx.Bucket(idxBucket)
	return splitKeySet(b.Get(idxKey))
}

func splitKeySet(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var out [][]byte
	start := 0
	for i, c := range data {
		if c == '\n' {
			out = append(out, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, data[start:])
	}
	return out
}

func joinKeySet(set [][]byte) []byte {
	var out []byte
	for i, k := range set {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, k...)
	}
	return out
}

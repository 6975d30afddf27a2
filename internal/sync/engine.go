// Package sync implements the Sync Engine: given a repository
// specifier, it brings the local Transactional and Search Stores up to
// date with GitHub, resolving cross-repository references found along
// the way. The per-resource fan-out and watermark bookkeeping follow
// the teacher's GitHub provider call shape and its task manager's
// mutex-guarded read-modify-write pattern.
package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hlfshell/gitdb/internal/embedding"
	"github.com/hlfshell/gitdb/internal/ghclient"
	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/refext"
	"github.com/hlfshell/gitdb/internal/storage/ss"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// Engine drives sync runs against one GitHub client, one Transactional
// Store, and one Search Store.
type Engine struct {
	Client   ghclient.Client
	TS       *ts.Store
	SS       *ss.Store
	Embedder embedding.Embedder
	Logger   *log.Logger

	// Projects, when non-nil, enables the Projects sync step alongside
	// Issues and PullRequests. Left nil by default: the GraphQL client
	// it requires is out of scope, so SyncRepository simply skips the
	// step rather than failing.
	Projects ProjectsClient
}

// Result mirrors the SyncResult the algorithm returns.
type Result struct {
	IssuesSynced       int64
	PullRequestsSynced int64
	Errors             []string
}

// New constructs an Engine. A nil logger falls back to a package
// default writing to stderr, matching the teacher's package-level
// logger convention.
func New(client ghclient.Client, tsStore *ts.Store, ssStore *ss.Store, embedder embedding.Embedder, logger *log.Logger) *Engine {
	if logger == nil {
		logger = defaultLogger
	}
	if embedder == nil {
		embedder = embedding.Stub(embedding.DefaultDimension)
	}
	return &Engine{Client: client, TS: tsStore, SS: ssStore, Embedder: embedder, Logger: logger}
}

// SyncRepository implements spec §4.4's algorithm: parse, fetch
// metadata, then fan out Issues and PullRequests concurrently.
func (e *Engine) SyncRepository(ctx context.Context, spec string, full bool) (*Result, error) {
	name, err := ids.ParseRepoSpecifier(spec)
	if err != nil {
		return nil, err
	}

	repo, err := e.Client.GetRepository(ctx, name.Owner, name.Name)
	if err != nil {
		return nil, err
	}
	repo.IndexedAt = time.Now().UTC()

	if err := e.upsertRepository(repo); err != nil {
		return nil, err
	}

	result := &Result{}
	var mu sync.Mutex
	addError := func(resource string, err error) {
		mu.Lock()
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", resource, err))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := e.syncIssues(gctx, repo.ID, name, full)
		if err != nil {
			e.recordSyncStatus(repo.ID, ids.ResourceIssues, ids.SyncFailed, err.Error(), n)
			addError("issues", err)
			return nil
		}
		e.recordSyncStatus(repo.ID, ids.ResourceIssues, ids.SyncSuccess, "", n)
		mu.Lock()
		result.IssuesSynced = n
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		n, err := e.syncPullRequests(gctx, repo.ID, name, full)
		if err != nil {
			e.recordSyncStatus(repo.ID, ids.ResourcePullRequests, ids.SyncFailed, err.Error(), n)
			addError("pull_requests", err)
			return nil
		}
		e.recordSyncStatus(repo.ID, ids.ResourcePullRequests, ids.SyncSuccess, "", n)
		mu.Lock()
		result.PullRequestsSynced = n
		mu.Unlock()
		return nil
	})

	// Neither goroutine above returns a non-nil error, so g.Wait returns
	// nil; a cancellation reaches result.Errors through the resource's
	// own error instead.
	if err := g.Wait(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	// Projects run after Issues and PullRequests have been written, so
	// backfillProjectID finds the items a project names.
	if e.Projects != nil {
		n, err := e.syncProjects(ctx, repo.ID, name)
		if err != nil {
			e.recordSyncStatus(repo.ID, ids.ResourceProjects, ids.SyncFailed, err.Error(), n)
			addError("projects", err)
		} else {
			e.recordSyncStatus(repo.ID, ids.ResourceProjects, ids.SyncSuccess, "", n)
		}
	}

	return result, nil
}

func (e *Engine) upsertRepository(repo *model.Repository) error {
	if err := e.TS.Update(func(tx *ts.Tx) error {
		return tx.SaveRepository(repo)
	}); err != nil {
		return err
	}

	vec, _ := e.embedText(repo.FullName + "\n" + repo.Description)
	return e.SS.UpsertRepository(repo, vec)
}

func (e *Engine) recordSyncStatus(repoID ids.RepositoryID, resource ids.ResourceType, outcome ids.SyncOutcome, errMsg string, itemsSynced int64) {
	status := &model.SyncStatus{
		ID:           ids.SyncStatusID(uuid.NewString()),
		RepositoryID: repoID,
		ResourceType: resource,
		LastSyncedAt: time.Now().UTC(),
		Status:       outcome,
		ErrorMessage: errMsg,
		ItemsSynced:  itemsSynced,
	}
	if err := e.TS.Update(func(tx *ts.Tx) error {
		return tx.SaveSyncStatus(status)
	}); err != nil {
		e.Logger.Printf("failed to record sync status for repo %d resource %s: %v", repoID, resource, err)
	}
}

func (e *Engine) watermark(repoID ids.RepositoryID, resource ids.ResourceType, full bool) time.Time {
	if full {
		return time.Time{}
	}

	var since time.Time
	_ = e.TS.View(func(tx *ts.Tx) error {
		status, err := tx.GetLatestSyncStatus(repoID, resource)
		if err != nil || status == nil {
			return nil
		}
		since = status.LastSyncedAt
		return nil
	})
	return since
}

func (e *Engine) embedText(text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}
	return e.Embedder.Embed(context.Background(), text)
}

// extractAndLinkReferences runs the reference extractor over a body and
// persists a CrossReference for every candidate whose target repository
// is registered locally. A URL-form candidate is recorded against the
// kind its URL names; an ambiguous short-form candidate is recorded only
// for the Issue and/or PullRequest that exists locally at that number,
// and keeps both edges when both exist (see resolveTargetTypes).
func (e *Engine) extractAndLinkReferences(source ids.ItemRef, body string) {
	for _, candidate := range refext.Extract(body, source) {
		var target *model.Repository
		_ = e.TS.View(func(tx *ts.Tx) error {
			r, err := tx.GetRepositoryByFullName(candidate.FullName())
			if err != nil {
				return nil
			}
			target = r
			return nil
		})
		if target == nil {
			continue
		}

		for _, resolvedType := range resolveTargetTypes(e.TS, target.ID, candidate.Number, candidate.Hint) {
			cr := &model.CrossReference{
				ID:                 ids.CrossReferenceID(fmt.Sprintf("%s->%s/%s#%d:%s", source.String(), candidate.Owner, candidate.Repo, candidate.Number, resolvedType)),
				SourceType:         source.Type,
				SourceID:           source.Number,
				SourceRepositoryID: source.RepositoryID,
				TargetType:         resolvedType,
				TargetRepositoryID: target.ID,
				TargetNumber:       candidate.Number,
				LinkText:           candidate.LinkText,
				CreatedAt:          time.Now().UTC(),
			}
			if err := e.TS.Update(func(tx *ts.Tx) error {
				return tx.SaveCrossReference(cr)
			}); err != nil {
				e.Logger.Printf("failed to save cross reference %s: %v", cr.ID, err)
			}
		}
	}
}

// resolveTargetTypes reports which item types a candidate resolves to.
// A URL-form candidate already names its kind and resolves to exactly
// that kind, recorded whether or not the target has been synced yet.
// Only an ambiguous short-form candidate is checked against both
// Issue and PullRequest, and may resolve to zero, one, or two target
// types depending on which genuinely exist locally at (repoID,
// number).
func resolveTargetTypes(store *ts.Store, repoID ids.RepositoryID, number int64, hint refext.TypeHint) []ids.ItemType {
	switch hint {
	case refext.HintIssue:
		return []ids.ItemType{ids.ItemTypeIssue}
	case refext.HintPullRequest:
		return []ids.ItemType{ids.ItemTypePullRequest}
	}

	var issueExists, prExists bool
	_ = store.View(func(tx *ts.Tx) error {
		if _, err := tx.GetIssueByNumber(repoID, number); err == nil {
			issueExists = true
		}
		if _, err := tx.GetPullRequestByNumber(repoID, number); err == nil {
			prExists = true
		}
		return nil
	})

	var out []ids.ItemType
	if issueExists {
		out = append(out, ids.ItemTypeIssue)
	}
	if prExists {
		out = append(out, ids.ItemTypePullRequest)
	}
	return out
}

var defaultLogger = log.New(os.Stderr, "gitdb: ", log.LstdFlags)

package query

import (
	"encoding/json"
	"strconv"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/storage/ss"
)

// canonicalID renders the result identity spec §4.5 dedups by:
// "repo:<id>", "issue:<id>", "pr:<id>", "comment:<id>", "user:<id>", or
// "file:<sha>:<path>". entityKey carries the comment's string primary
// key when entityType is ItemTypeComment; entityID is used otherwise.
func canonicalID(entityType ids.ItemType, entityID int64, entityKey string) string {
	switch entityType {
	case ids.ItemTypeRepository:
		return "repo:" + strconv.FormatInt(entityID, 10)
	case ids.ItemTypeIssue:
		return "issue:" + strconv.FormatInt(entityID, 10)
	case ids.ItemTypePullRequest:
		return "pr:" + strconv.FormatInt(entityID, 10)
	case ids.ItemTypeComment:
		return "comment:" + entityKey
	default:
		return string(entityType) + ":" + strconv.FormatInt(entityID, 10)
	}
}

func hitsToResults(hits []ss.Hit) []SearchResult {
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		r := SearchResult{
			CanonicalID:  canonicalID(h.EntityType, h.EntityID, h.EntityKey),
			EntityType:   h.EntityType,
			RepositoryID: h.RepositoryID,
			Title:        h.Title,
			Snippet:      h.Snippet,
			Score:        h.Score,
		}
		hydrate(&r, h.Data)
		out = append(out, r)
	}
	return out
}

func vectorHitsToResults(hits []ss.VectorHit) []SearchResult {
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		r := SearchResult{
			CanonicalID:  canonicalID(h.EntityType, h.EntityID, ""),
			EntityType:   h.EntityType,
			RepositoryID: h.RepositoryID,
			Score:        h.Score,
		}
		hydrate(&r, h.Data)
		out = append(out, r)
	}
	return out
}

// hydratedEntity is the union of json fields gitdb's model structs
// carry that a SearchResult needs for display: whichever title-like
// field the entity has, its body/description, and -- for Issues and
// PullRequests only -- state and labels.
type hydratedEntity struct {
	Title       string                      `json:"title"`
	FullName    string                      `json:"full_name"`
	Login       string                      `json:"login"`
	Body        string                      `json:"body"`
	Description string                      `json:"description"`
	State       ids.IssueOrPullRequestState `json:"state"`
	Labels      []string                    `json:"labels"`
}

// hydrate fills r's Title (if not already set by the full-text path),
// Body, State, and Labels from data, the Search Store's canonical-JSON
// column. A malformed or empty data leaves r unchanged.
func hydrate(r *SearchResult, data string) {
	if data == "" {
		return
	}
	var h hydratedEntity
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return
	}

	if r.Title == "" {
		switch {
		case h.Title != "":
			r.Title = h.Title
		case h.FullName != "":
			r.Title = h.FullName
		case h.Login != "":
			r.Title = h.Login
		}
	}

	r.Body = h.Body
	if r.Body == "" {
		r.Body = h.Description
	}
	r.State = h.State
	r.Labels = h.Labels
}

// toSSFilter translates the query engine's Filter into the Search
// Store's SearchFilter for the FTS path. The vector path only narrows
// by repository; State/Label have no analogue over an embedding
// column, so Semantic and the vector half of Hybrid searches don't
// apply them.
func toSSFilter(filter Filter) ss.SearchFilter {
	return ss.SearchFilter{
		RepositoryID: filter.Repository,
		State:        filter.State,
		Label:        filter.Label,
	}
}

package query

import (
	"context"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// RelatedOptions narrows FindRelated's three result categories.
// LinksOnly and SemanticOnly are mutually exclusive shortcuts named by
// the MCP tool's find_related_items arguments; when both are false all
// three categories run.
type RelatedOptions struct {
	Limit        int
	LinksOnly    bool
	SemanticOnly bool
}

// RelatedResult bundles the three categories spec §4.6 names, returned
// in outgoing-then-incoming-then-similar order (callers that want a
// flat list can concatenate the three slices in that order).
type RelatedResult struct {
	Outgoing []*model.CrossReference
	Incoming []*model.CrossReference
	Similar  []SearchResult
}

// FindRelated implements spec §4.6: outgoing and incoming
// cross-references plus a semantic-similarity search over the item's
// own (title, body), excluding the item itself. LinksOnly skips the
// similarity search; SemanticOnly skips both cross-reference lookups.
func (e *Engine) FindRelated(ctx context.Context, tsStore *ts.Store, ref ids.ItemRef, body string, opts RelatedOptions) (*RelatedResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	result := &RelatedResult{}

	if !opts.SemanticOnly {
		if err := tsStore.View(func(tx *ts.Tx) error {
			var err error
			result.Outgoing, err = tx.ListOutgoingCrossReferences(ref.RepositoryID, ref.Type, ref.Number)
			if err != nil {
				return err
			}
			result.Incoming, err = tx.ListIncomingCrossReferences(ref.RepositoryID, ref.Type, ref.Number)
			return err
		}); err != nil {
			return nil, err
		}
		if len(result.Outgoing) > limit {
			result.Outgoing = result.Outgoing[:limit]
		}
		if len(result.Incoming) > limit {
			result.Incoming = result.Incoming[:limit]
		}
	}

	if !opts.LinksOnly && body != "" {
		hits, err := e.UnifiedSearch(ctx, UnifiedQuery{
			Text:  body,
			Mode:  Semantic,
			Limit: limit + 1,
			Filter: Filter{
				Repository: &ref.RepositoryID,
			},
		})
		if err != nil {
			return nil, err
		}
		self := selfCanonicalID(tsStore, ref)
		for _, h := range hits {
			if self != "" && h.CanonicalID == self {
				continue
			}
			result.Similar = append(result.Similar, h)
			if len(result.Similar) == limit {
				break
			}
		}
	}

	return result, nil
}

// selfCanonicalID resolves ref's internal store id so the similarity
// search can exclude the item it was run against -- ref.Number is the
// GitHub-visible number, not the internal primary key Hit.EntityID (and
// therefore CanonicalID) is built from, so a lookup by number is
// required before the two can be compared.
func selfCanonicalID(tsStore *ts.Store, ref ids.ItemRef) string {
	var self string
	_ = tsStore.View(func(tx *ts.Tx) error {
		switch ref.Type {
		case ids.ItemTypeIssue:
			if issue, err := tx.GetIssueByNumber(ref.RepositoryID, ref.Number); err == nil {
				self = canonicalID(ids.ItemTypeIssue, int64(issue.ID), "")
			}
		case ids.ItemTypePullRequest:
			if pr, err := tx.GetPullRequestByNumber(ref.RepositoryID, ref.Number); err == nil {
				self = canonicalID(ids.ItemTypePullRequest, int64(pr.ID), "")
			}
		}
		return nil
	})
	return self
}

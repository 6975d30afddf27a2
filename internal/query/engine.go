package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hlfshell/gitdb/internal/embedding"
	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/storage/ss"
)

var (
	errMissingText         = errors.New("query: text is required in FullText mode")
	errMissingVectorOrText = errors.New("query: text or vector is required in Semantic mode")
)

// Engine implements unified_search and search over one Search Store,
// embedding query text through the same Embedder the Sync Engine uses
// so a query's vector and a synced item's vector share a space.
type Engine struct {
	SS        *ss.Store
	Embedder  embedding.Embedder
	VectorCfg ss.VectorSearchConfig
}

// New constructs a query Engine. A nil embedder falls back to the
// package-default stub, matching sync.New's convention. A zero-value
// vectorCfg falls back to ss.DefaultVectorSearchConfig(), so callers
// that don't care about the Search config section can pass it bare.
func New(store *ss.Store, embedder embedding.Embedder, vectorCfg ss.VectorSearchConfig) *Engine {
	if embedder == nil {
		embedder = embedding.Stub(embedding.DefaultDimension)
	}
	if vectorCfg.Dimension == 0 {
		vectorCfg = ss.DefaultVectorSearchConfig()
	}
	return &Engine{SS: store, Embedder: embedder, VectorCfg: vectorCfg}
}

// Search runs the high-level convenience form: build a filter from
// repository/state/label and run FullText mode, per spec §4.5.
func (e *Engine) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	return e.UnifiedSearch(ctx, UnifiedQuery{
		Text:  q.Text,
		Mode:  FullText,
		Limit: limit,
		Filter: Filter{
			Repository: q.Repository,
			State:      q.State,
			Label:      q.Label,
		},
	})
}

// UnifiedSearch dispatches on Mode, per spec §4.5. Missing FTS indexes
// or an empty corpus return an empty result, not an error; only
// malformed queries (missing text/vector for the selected mode) fail.
func (e *Engine) UnifiedSearch(ctx context.Context, q UnifiedQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	switch q.Mode {
	case FullText:
		if q.Text == "" {
			return nil, ids.BadInput("UnifiedSearch", errMissingText)
		}
		return e.textSearch(q.Text, q.Filter, limit)

	case Semantic:
		vec, err := e.resolveVector(ctx, q.Text, q.Vector)
		if err != nil {
			return nil, err
		}
		return e.vectorSearch(vec, q.Filter, limit)

	case Hybrid:
		if q.Text == "" && len(q.Vector) == 0 {
			return nil, ids.BadInput("UnifiedSearch", errMissingVectorOrText)
		}
		strategy := q.Strategy
		if strategy.Kind == hybridKindUnspecified {
			strategy = DefaultHybridStrategy()
		}
		return e.hybridSearch(ctx, q, strategy, limit)

	default:
		return nil, ids.BadInput("UnifiedSearch", fmt.Errorf("unknown mode %v", q.Mode))
	}
}

func (e *Engine) resolveVector(ctx context.Context, text string, vector []float32) ([]float32, error) {
	if len(vector) > 0 {
		return vector, nil
	}
	if text == "" {
		return nil, ids.BadInput("UnifiedSearch", errMissingVectorOrText)
	}
	return e.Embedder.Embed(ctx, text)
}

func (e *Engine) textSearch(text string, filter Filter, limit int) ([]SearchResult, error) {
	hits, err := e.SS.SearchAll(text, toSSFilter(filter), limit*2)
	if err != nil {
		return nil, err
	}
	results := hitsToResults(hits)
	dedupeStable(&results)
	sortResultsByScore(results)
	return truncate(results, limit), nil
}

func (e *Engine) vectorSearch(vector []float32, filter Filter, limit int) ([]SearchResult, error) {
	hits, err := e.SS.VectorSearch(vector, e.VectorCfg, filter.Repository, limit*2)
	if err != nil {
		return nil, err
	}
	results := vectorHitsToResults(hits)
	dedupeStable(&results)
	sortResultsByScore(results)
	return truncate(results, limit), nil
}

func (e *Engine) hybridSearch(ctx context.Context, q UnifiedQuery, strategy HybridStrategy, limit int) ([]SearchResult, error) {
	candidateLimit := limit * 2

	switch strategy.Kind {
	case TextOnly:
		if q.Text == "" {
			return nil, ids.BadInput("UnifiedSearch", errMissingText)
		}
		return e.textSearch(q.Text, q.Filter, limit)

	case VectorOnly:
		vec, err := e.resolveVector(ctx, q.Text, q.Vector)
		if err != nil {
			return nil, err
		}
		return e.vectorSearch(vec, q.Filter, limit)
	}

	var textResults, vectorResults []SearchResult
	if q.Text != "" {
		hits, err := e.SS.SearchAll(q.Text, toSSFilter(q.Filter), candidateLimit)
		if err != nil {
			return nil, err
		}
		textResults = hitsToResults(hits)
	}

	vec, err := e.resolveVector(ctx, q.Text, q.Vector)
	if err != nil {
		return nil, err
	}
	vhits, err := e.SS.VectorSearch(vec, e.VectorCfg, q.Filter.Repository, candidateLimit)
	if err != nil {
		return nil, err
	}
	vectorResults = vectorHitsToResults(vhits)

	var combined []SearchResult
	switch strategy.Kind {
	case RRF:
		combined = combineRRF(textResults, vectorResults, strategy.K)
	case Linear:
		combined = combineLinear(textResults, vectorResults, strategy.WText, strategy.WVec)
	default:
		combined = combineLinear(textResults, vectorResults, strategy.WText, strategy.WVec)
	}

	sortResultsByScore(combined)
	return truncate(combined, limit), nil
}

func truncate(results []SearchResult, limit int) []SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

// sortResultsByScore orders by descending score, breaking ties by
// CanonicalID so that a tied ordering is deterministic rather than
// dependent on map iteration order, per spec §8's "stable by id" tie
// requirement.
func sortResultsByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CanonicalID < results[j].CanonicalID
	})
}

// dedupeStable removes later duplicates by CanonicalID, keeping the
// first occurrence's record, without disturbing relative order of the
// survivors -- matching spec §8's "stable by id" requirement when
// scores tie.
func dedupeStable(results *[]SearchResult) {
	seen := make(map[string]bool, len(*results))
	out := (*results)[:0]
	for _, r := range *results {
		if seen[r.CanonicalID] {
			continue
		}
		seen[r.CanonicalID] = true
		out = append(out, r)
	}
	*results = out
}

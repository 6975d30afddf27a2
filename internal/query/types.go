// Package query implements the Query Engine: a single unified_search
// entry point over FullText, Semantic, and Hybrid modes, plus
// cross-reference traversal. It consumes internal/storage/ss's FTS and
// vector search surfaces and internal/storage/ts's cross-reference
// listings, and never touches the GitHub API directly.
package query

import (
	"github.com/hlfshell/gitdb/internal/ids"
)

// Mode selects how UnifiedSearch combines the text and vector paths.
type Mode int

const (
	FullText Mode = iota
	Semantic
	Hybrid
)

// HybridKind names the strategy a Hybrid-mode query combines results
// with.
type HybridKind int

const (
	// hybridKindUnspecified is the zero value: UnifiedSearch treats a
	// HybridStrategy left unset as a request for DefaultHybridStrategy,
	// so the other kinds deliberately start at 1.
	hybridKindUnspecified HybridKind = iota
	TextOnly
	VectorOnly
	RRF
	Linear
)

// HybridStrategy parameterizes Hybrid mode. K is used by RRF; WText and
// WVec are used by Linear. DefaultHybridStrategy is Linear{0.7, 0.3}
// per spec §4.5.
type HybridStrategy struct {
	Kind  HybridKind
	K     float64
	WText float64
	WVec  float64
}

// DefaultHybridStrategy is the strategy UnifiedQuery uses when Hybrid
// mode is selected without an explicit Strategy.
func DefaultHybridStrategy() HybridStrategy {
	return HybridStrategy{Kind: Linear, WText: 0.7, WVec: 0.3}
}

// Filter narrows a search to rows matching all non-zero fields. Label
// is matched by substring; Repository and State are matched exactly.
type Filter struct {
	Repository *ids.RepositoryID
	State      ids.IssueOrPullRequestState
	Label      string
}

// UnifiedQuery is the single entry point's argument, per spec §4.5.
type UnifiedQuery struct {
	Text     string
	Vector   []float32
	Mode     Mode
	Strategy HybridStrategy
	Limit    int
	Offset   int
	Filter   Filter
}

// SearchQuery is the high-level convenience form: it builds a Filter
// from repository/state/label fields and always runs in FullText mode.
type SearchQuery struct {
	Text       string
	Repository *ids.RepositoryID
	State      ids.IssueOrPullRequestState
	Label      string
	Limit      int
}

// SearchResult is one row of a unified search response. CanonicalID is
// one of "repo:<id>", "issue:<id>", "pr:<id>", "comment:<id>",
// "user:<id>", or "file:<sha>:<path>", per spec §4.5's identity rule.
type SearchResult struct {
	CanonicalID  string
	EntityType   ids.ItemType
	RepositoryID ids.RepositoryID
	Title        string
	Snippet      string
	Score        float64

	// Body, State, and Labels are hydrated from the Search Store's data
	// column (the entity's canonical JSON) when present. State and
	// Labels are left zero for entities that don't carry them
	// (Repositories, Users, Comments).
	Body   string
	State  ids.IssueOrPullRequestState
	Labels []string
}

// scoredResult is the pre-dedup, pre-sort working unit the combiners
// operate over.
type scoredResult struct {
	id     string
	result SearchResult
	score  float64
}

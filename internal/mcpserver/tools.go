package mcpserver

import (
	"context"
	"fmt"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ts"
)

// RegisterRepositoryInput is spec §6's register_repository{ url }.
type RegisterRepositoryInput struct {
	URL string `json:"url" jsonschema:"the repository URL or owner/name specifier to register"`
}

// RegisterRepositoryOutput carries the resulting sync stats, matching
// the CLI's register command output.
type RegisterRepositoryOutput struct {
	Repository         *model.Repository `json:"repository"`
	IssuesSynced       int64             `json:"issues_synced"`
	PullRequestsSynced int64             `json:"pull_requests_synced"`
	Errors             []string          `json:"errors"`
}

func (s *Server) registerRepository(ctx context.Context, req *mcp.CallToolRequest, in RegisterRepositoryInput) (*mcp.CallToolResult, RegisterRepositoryOutput, error) {
	result, err := s.Sync.SyncRepository(ctx, in.URL, true)
	if err != nil {
		return nil, RegisterRepositoryOutput{}, err
	}

	name, err := ids.ParseRepoSpecifier(in.URL)
	if err != nil {
		return nil, RegisterRepositoryOutput{}, err
	}
	var repo *model.Repository
	if err := s.TS.View(func(tx *ts.Tx) error {
		r, err := tx.GetRepositoryByFullName(name.FullName())
		if err != nil {
			return err
		}
		repo = r
		return nil
	}); err != nil {
		return nil, RegisterRepositoryOutput{}, err
	}

	out := RegisterRepositoryOutput{
		Repository:         repo,
		IssuesSynced:       result.IssuesSynced,
		PullRequestsSynced: result.PullRequestsSynced,
		Errors:             result.Errors,
	}
	return nil, out, nil
}

// ListRepositoriesInput is spec §6's list_repositories{} (no fields).
type ListRepositoriesInput struct{}

type ListRepositoriesOutput struct {
	Repositories []*model.Repository `json:"repositories"`
}

func (s *Server) listRepositories(ctx context.Context, req *mcp.CallToolRequest, in ListRepositoriesInput) (*mcp.CallToolResult, ListRepositoriesOutput, error) {
	var repos []*model.Repository
	if err := s.TS.View(func(tx *ts.Tx) error {
		r, err := tx.ListRepositories()
		if err != nil {
			return err
		}
		repos = r
		return nil
	}); err != nil {
		return nil, ListRepositoriesOutput{}, err
	}
	return nil, ListRepositoriesOutput{Repositories: repos}, nil
}

// SyncRepositoriesInput is spec §6's sync_repositories{ repo?, full? }.
// An empty Repo syncs every registered repository.
type SyncRepositoriesInput struct {
	Repo string `json:"repo,omitempty" jsonschema:"owner/name of the repository to sync; omit to sync every registered repository"`
	Full bool   `json:"full,omitempty" jsonschema:"ignore the stored watermark and resync everything"`
}

type SyncResultOutput struct {
	Repository         string   `json:"repository"`
	IssuesSynced       int64    `json:"issues_synced"`
	PullRequestsSynced int64    `json:"pull_requests_synced"`
	Errors             []string `json:"errors"`
}

type SyncRepositoriesOutput struct {
	Results []SyncResultOutput `json:"results"`
}

func (s *Server) syncRepositories(ctx context.Context, req *mcp.CallToolRequest, in SyncRepositoriesInput) (*mcp.CallToolResult, SyncRepositoriesOutput, error) {
	specifiers, err := s.targetSpecifiers(in.Repo)
	if err != nil {
		return nil, SyncRepositoriesOutput{}, err
	}

	out := SyncRepositoriesOutput{}
	for _, spec := range specifiers {
		result, err := s.Sync.SyncRepository(ctx, spec, in.Full)
		if err != nil {
			out.Results = append(out.Results, SyncResultOutput{Repository: spec, Errors: []string{err.Error()}})
			continue
		}
		out.Results = append(out.Results, SyncResultOutput{
			Repository:         spec,
			IssuesSynced:       result.IssuesSynced,
			PullRequestsSynced: result.PullRequestsSynced,
			Errors:             result.Errors,
		})
	}
	return nil, out, nil
}

// targetSpecifiers resolves sync_repositories' optional repo field into
// the list of owner/name specifiers to sync: just that one repo when
// given, or every registered repository otherwise.
func (s *Server) targetSpecifiers(repo string) ([]string, error) {
	if repo != "" {
		return []string{repo}, nil
	}
	var specs []string
	if err := s.TS.View(func(tx *ts.Tx) error {
		repos, err := tx.ListRepositories()
		if err != nil {
			return err
		}
		for _, r := range repos {
			specs = append(specs, r.FullName)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return specs, nil
}

// SearchItemsInput is spec §6's search_items{ query, repo?, state?,
// label?, limit? }.
type SearchItemsInput struct {
	Query string `json:"query" jsonschema:"the full-text search query"`
	Repo  string `json:"repo,omitempty" jsonschema:"restrict results to this owner/name repository"`
	State string `json:"state,omitempty" jsonschema:"restrict to issues/pull requests in this state: open, closed, or merged"`
	Label string `json:"label,omitempty" jsonschema:"restrict to issues/pull requests whose labels contain this substring"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return, default 20"`
}

type SearchItemsOutput struct {
	Results []query.SearchResult `json:"results"`
}

func (s *Server) searchItems(ctx context.Context, req *mcp.CallToolRequest, in SearchItemsInput) (*mcp.CallToolResult, SearchItemsOutput, error) {
	var repoID *ids.RepositoryID
	if in.Repo != "" {
		id, err := s.resolveRepositoryID(in.Repo)
		if err != nil {
			return nil, SearchItemsOutput{}, err
		}
		repoID = &id
	}

	results, err := s.Query.Search(ctx, query.SearchQuery{
		Text:       in.Query,
		Repository: repoID,
		State:      ids.IssueOrPullRequestState(in.State),
		Label:      in.Label,
		Limit:      in.Limit,
	})
	if err != nil {
		return nil, SearchItemsOutput{}, err
	}
	return nil, SearchItemsOutput{Results: results}, nil
}

// FindRelatedItemsInput is spec §6's find_related_items{ repo, number,
// item_type?, limit?, links_only?, semantic_only? }. ItemType defaults
// to "issue" when omitted.
type FindRelatedItemsInput struct {
	Repo         string `json:"repo" jsonschema:"owner/name of the repository the item belongs to"`
	Number       int64  `json:"number" jsonschema:"the issue or pull request number"`
	ItemType     string `json:"item_type,omitempty" jsonschema:"issue or pull_request, default issue"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results per category, default 20"`
	LinksOnly    bool   `json:"links_only,omitempty" jsonschema:"only return cross-reference links, skip the semantic similarity search"`
	SemanticOnly bool   `json:"semantic_only,omitempty" jsonschema:"only return semantically similar items, skip cross-reference lookups"`
}

type FindRelatedItemsOutput struct {
	Outgoing []*model.CrossReference `json:"outgoing"`
	Incoming []*model.CrossReference `json:"incoming"`
	Similar  []query.SearchResult    `json:"similar"`
}

func (s *Server) findRelatedItems(ctx context.Context, req *mcp.CallToolRequest, in FindRelatedItemsInput) (*mcp.CallToolResult, FindRelatedItemsOutput, error) {
	repoID, err := s.resolveRepositoryID(in.Repo)
	if err != nil {
		return nil, FindRelatedItemsOutput{}, err
	}

	itemType := ids.ItemTypeIssue
	if in.ItemType != "" {
		itemType = ids.ItemType(in.ItemType)
	}

	ref := ids.ItemRef{RepositoryID: repoID, Type: itemType, Number: in.Number}
	var body string
	if !in.LinksOnly {
		body, err = s.itemBody(ref)
		if err != nil && ids.KindOf(err) != ids.KindNotFound {
			return nil, FindRelatedItemsOutput{}, err
		}
	}

	result, err := s.Query.FindRelated(ctx, s.TS, ref, body, query.RelatedOptions{
		Limit:        in.Limit,
		LinksOnly:    in.LinksOnly,
		SemanticOnly: in.SemanticOnly,
	})
	if err != nil {
		return nil, FindRelatedItemsOutput{}, err
	}

	return nil, FindRelatedItemsOutput{
		Outgoing: result.Outgoing,
		Incoming: result.Incoming,
		Similar:  result.Similar,
	}, nil
}

func (s *Server) resolveRepositoryID(repo string) (ids.RepositoryID, error) {
	name, err := ids.ParseRepoSpecifier(repo)
	if err != nil {
		return 0, err
	}
	var repoID ids.RepositoryID
	if err := s.TS.View(func(tx *ts.Tx) error {
		r, err := tx.GetRepositoryByFullName(name.FullName())
		if err != nil {
			return err
		}
		repoID = r.ID
		return nil
	}); err != nil {
		return 0, err
	}
	return repoID, nil
}

// itemBody fetches the title+body text FindRelated's similarity search
// runs over, for whichever item type ref names.
func (s *Server) itemBody(ref ids.ItemRef) (string, error) {
	var body string
	err := s.TS.View(func(tx *ts.Tx) error {
		switch ref.Type {
		case ids.ItemTypeIssue:
			issue, err := tx.GetIssueByNumber(ref.RepositoryID, ref.Number)
			if err != nil {
				return err
			}
			body = issue.Title + "\n" + issue.Body
		case ids.ItemTypePullRequest:
			pr, err := tx.GetPullRequestByNumber(ref.RepositoryID, ref.Number)
			if err != nil {
				return err
			}
			body = pr.Title + "\n" + pr.Body
		default:
			return ids.BadInput("findRelatedItems", fmt.Errorf("unsupported item_type %q", ref.Type))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// RepositoryID is the primary key of a Repository row.
type RepositoryID int64

// ToKey renders the id for use as a transactional-store bucket key.
func (id RepositoryID) ToKey() []byte { return []byte(strconv.FormatInt(int64(id), 10)) }

// IssueID is the primary key of an Issue row.
type IssueID int64

// ToKey renders the id for use as a transactional-store bucket key.
func (id IssueID) ToKey() []byte { return []byte(strconv.FormatInt(int64(id), 10)) }

// PullRequestID is the primary key of a PullRequest row.
type PullRequestID int64

// ToKey renders the id for use as a transactional-store bucket key.
func (id PullRequestID) ToKey() []byte { return []byte(strconv.FormatInt(int64(id), 10)) }

// CommentID is the primary key of a comment row, built by the GitHub
// client from GitHub's comment id with an "issue-comment-" or
// "pr-comment-" prefix (issue or pull request comment tables are keyed
// independently).
type CommentID string

// ToKey renders the id for use as a transactional-store bucket key.
func (id CommentID) ToKey() []byte { return []byte(id) }

// UserID is the primary key of a User row (GitHub's numeric user id).
type UserID int64

// ToKey renders the id for use as a transactional-store bucket key.
func (id UserID) ToKey() []byte { return []byte(strconv.FormatInt(int64(id), 10)) }

// SyncStatusID is the primary key of a SyncStatus row, assigned at
// write time by the caller (the sync engine mints a uuid per attempt).
type SyncStatusID string

// ToKey renders the id for use as a transactional-store bucket key.
func (id SyncStatusID) ToKey() []byte { return []byte(id) }

// CrossReferenceID is the primary key of a CrossReference row, derived
// deterministically from its (source, target) pair so that re-running
// the extractor over an unchanged body is idempotent.
type CrossReferenceID string

// ToKey renders the id for use as a transactional-store bucket key.
func (id CrossReferenceID) ToKey() []byte { return []byte(id) }

// ProjectID is GitHub's opaque GraphQL node id for a Project.
type ProjectID string

// ToKey renders the id for use as a transactional-store bucket key.
func (id ProjectID) ToKey() []byte { return []byte(id) }

// ProjectItemID is the composite "{project_id}:{item_type}:{item_id}" key
// named in the data model.
type ProjectItemID string

// ToKey renders the id for use as a transactional-store bucket key.
func (id ProjectItemID) ToKey() []byte { return []byte(id) }

// IssueOrPullRequestState mirrors the Issue/PullRequest State enum.
type IssueOrPullRequestState string

const (
	StateOpen   IssueOrPullRequestState = "open"
	StateClosed IssueOrPullRequestState = "closed"
	StateMerged IssueOrPullRequestState = "merged"
)

// ResourceType names the kind of resource a SyncStatus row tracks.
type ResourceType string

const (
	ResourceIssues       ResourceType = "issues"
	ResourcePullRequests ResourceType = "pull_requests"
	ResourceProjects     ResourceType = "projects"
)

// SyncOutcome is the result recorded on a SyncStatus row.
type SyncOutcome string

const (
	SyncSuccess SyncOutcome = "success"
	SyncFailed  SyncOutcome = "failed"
)

// ItemType distinguishes an Issue from a PullRequest in cross-cutting
// contexts (cross-references, participants, query results).
type ItemType string

const (
	ItemTypeIssue       ItemType = "issue"
	ItemTypePullRequest ItemType = "pull_request"

	// ItemTypeRepository tags search hits against the repositories
	// table; it never appears on a CrossReference or Participant, which
	// only ever name an issue or pull request.
	ItemTypeRepository ItemType = "repository"

	// ItemTypeComment tags search hits against issue_comments/pr_comments;
	// like ItemTypeRepository it never appears on a CrossReference or
	// Participant.
	ItemTypeComment ItemType = "comment"

	// ItemTypeUser tags search hits against the users table; like
	// ItemTypeRepository it never appears on a CrossReference or
	// Participant.
	ItemTypeUser ItemType = "user"
)

// ParticipantRole names a user's relationship to an issue or PR.
type ParticipantRole string

const (
	RoleAuthor    ParticipantRole = "author"
	RoleAssignee  ParticipantRole = "assignee"
	RoleCommenter ParticipantRole = "commenter"
)

// ItemRef identifies a concrete local item by repository, kind, and
// GitHub-visible number -- the unit cross-reference traversal and the
// reference extractor both operate over.
type ItemRef struct {
	RepositoryID RepositoryID
	Type         ItemType
	Number       int64
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%d#%d", r.Type, r.RepositoryID, r.Number)
}

// RepositoryName is a validated "owner/name" string. The zero value is
// not valid; always construct through NewRepositoryName.
type RepositoryName struct {
	Owner string
	Name  string
}

// NewRepositoryName validates and parses an "owner/name" string. It
// rejects whitespace and any count of slashes other than exactly one.
func NewRepositoryName(s string) (RepositoryName, error) {
	if strings.ContainsAny(s, " \t\n\r") {
		return RepositoryName{}, BadInput("RepositoryName.New", fmt.Errorf("repository name %q contains whitespace", s))
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryName{}, BadInput("RepositoryName.New", fmt.Errorf("repository name %q must be exactly owner/name", s))
	}

	return RepositoryName{Owner: parts[0], Name: parts[1]}, nil
}

// FullName renders the canonical "owner/name" form.
func (r RepositoryName) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r RepositoryName) String() string { return r.FullName() }

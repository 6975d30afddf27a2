// Package model defines the entity types from the data model: the
// structs that the Transactional Store persists, the Search Store
// indexes, and the sync/query engines pass between each other. Keeping
// these in one leaf package (depending only on internal/ids) avoids
// import cycles between storage/ts, storage/ss, sync, and query.
package model

import (
	"fmt"
	"time"

	"github.com/hlfshell/gitdb/internal/ids"
)

// Repository mirrors the data model's Repository entity.
type Repository struct {
	ID          ids.RepositoryID `json:"id"`
	Owner       string           `json:"owner"`
	Name        string           `json:"name"`
	FullName    string           `json:"full_name"`
	Description string           `json:"description,omitempty"`
	Stars       int64            `json:"stars"`
	Forks       int64            `json:"forks"`
	Language    string           `json:"language,omitempty"`
	Topics      []string         `json:"topics,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	IndexedAt   time.Time        `json:"indexed_at"`
}

// Issue mirrors the data model's Issue entity.
type Issue struct {
	ID            ids.IssueID                 `json:"id"`
	RepositoryID  ids.RepositoryID            `json:"repository_id"`
	Number        int64                       `json:"number"`
	Title         string                      `json:"title"`
	Body          string                      `json:"body,omitempty"`
	State         ids.IssueOrPullRequestState `json:"state"`
	Author        string                      `json:"author"`
	Assignees     []string                    `json:"assignees,omitempty"`
	Labels        []string                    `json:"labels,omitempty"`
	MilestoneName string                      `json:"milestone_name,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	ClosedAt      *time.Time                  `json:"closed_at,omitempty"`
	CommentsCount int64                       `json:"comments_count"`
	ProjectIDs    []ids.ProjectID             `json:"project_ids,omitempty"`
}

// PullRequest mirrors the data model's PullRequest entity.
type PullRequest struct {
	ID              ids.PullRequestID           `json:"id"`
	RepositoryID    ids.RepositoryID            `json:"repository_id"`
	Number          int64                       `json:"number"`
	Title           string                      `json:"title"`
	Body            string                      `json:"body,omitempty"`
	State           ids.IssueOrPullRequestState `json:"state"`
	Author          string                      `json:"author"`
	Assignees       []string                    `json:"assignees,omitempty"`
	Labels          []string                    `json:"labels,omitempty"`
	MilestoneName   string                      `json:"milestone_name,omitempty"`
	HeadRef         string                      `json:"head_ref"`
	BaseRef         string                      `json:"base_ref"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	MergedAt        *time.Time                  `json:"merged_at,omitempty"`
	ClosedAt        *time.Time                  `json:"closed_at,omitempty"`
	CommentsCount   int64                       `json:"comments_count"`
	CommitsCount    int64                       `json:"commits_count"`
	Additions       int64                       `json:"additions"`
	Deletions       int64                       `json:"deletions"`
	ChangedFiles    int64                       `json:"changed_files"`
	ProjectIDs      []ids.ProjectID             `json:"project_ids,omitempty"`
}

// IsMerged reports whether MergedAt is set, the condition the data
// model ties to "state = Merged".
func (pr *PullRequest) IsMerged() bool { return pr.MergedAt != nil }

// IssueComment mirrors the data model's IssueComment entity.
type IssueComment struct {
	ID        ids.CommentID `json:"id"`
	IssueID   ids.IssueID   `json:"issue_id"`
	CommentID int64         `json:"comment_id"`
	Author    string        `json:"author"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PullRequestComment mirrors the data model's PullRequestComment entity.
type PullRequestComment struct {
	ID            ids.CommentID     `json:"id"`
	PullRequestID ids.PullRequestID `json:"pull_request_id"`
	CommentID     int64             `json:"comment_id"`
	Author        string            `json:"author"`
	Body          string            `json:"body"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SyncStatus mirrors the data model's SyncStatus entity.
type SyncStatus struct {
	ID            ids.SyncStatusID `json:"id"`
	RepositoryID  ids.RepositoryID `json:"repository_id"`
	ResourceType  ids.ResourceType `json:"resource_type"`
	LastSyncedAt  time.Time        `json:"last_synced_at"`
	Status        ids.SyncOutcome  `json:"status"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	ItemsSynced   int64            `json:"items_synced"`
}

// CrossReference mirrors the data model's CrossReference entity.
type CrossReference struct {
	ID                   ids.CrossReferenceID `json:"id"`
	SourceType           ids.ItemType         `json:"source_type"`
	SourceID             int64                `json:"source_id"`
	SourceRepositoryID   ids.RepositoryID     `json:"source_repository_id"`
	TargetType           ids.ItemType         `json:"target_type"`
	TargetRepositoryID   ids.RepositoryID     `json:"target_repository_id"`
	TargetNumber         int64                `json:"target_number"`
	LinkText             string               `json:"link_text"`
	CreatedAt            time.Time            `json:"created_at"`
}

// User mirrors the data model's User entity.
type User struct {
	ID            ids.UserID `json:"id"`
	Login         string     `json:"login"`
	Avatar        string     `json:"avatar,omitempty"`
	URL           string     `json:"url,omitempty"`
	UserType      string     `json:"user_type,omitempty"`
	SiteAdmin     bool       `json:"site_admin"`
	FirstSeenAt   time.Time  `json:"first_seen_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}

// Participant links a user to an issue or PR with a role. The composite
// key "{item_id}:{user_id}" is computed by Key, not stored.
type Participant struct {
	ItemID ids.ItemRef          `json:"item_ref"`
	UserID ids.UserID           `json:"user_id"`
	Role   ids.ParticipantRole  `json:"role"`
}

// Key renders the composite primary key named in the data model.
func (p Participant) Key() string {
	return fmt.Sprintf("%s:%d", p.ItemID.String(), p.UserID)
}

// Project mirrors the data model's Project entity.
type Project struct {
	ID    ids.ProjectID `json:"id"`
	Title string        `json:"title"`
	URL   string        `json:"url,omitempty"`
}

// ProjectItem mirrors the data model's ProjectItem entity.
type ProjectItem struct {
	ID        ids.ProjectItemID `json:"id"`
	ProjectID ids.ProjectID     `json:"project_id"`
	ItemType  ids.ItemType      `json:"item_type"`
	ItemID    int64             `json:"item_id"`
}

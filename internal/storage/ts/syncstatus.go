package ts

import (
	"encoding/json"
	"sort"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveSyncStatus appends a sync status row and maintains the
// by-repository index. Rows are never updated in place: each sync
// attempt writes a new row so the history of past runs survives.
func (t *Tx) SaveSyncStatus(s *model.SyncStatus) error {
	if err := putJSON(t.tx, bucketSyncStatus, s.ID.ToKey(), s); err != nil {
		return ids.Storage("SaveSyncStatus", err)
	}
	if err := indexAdd(t.tx, idxSyncStatusByRepo, s.RepositoryID.ToKey(), s.ID.ToKey()); err != nil {
		return ids.Storage("SaveSyncStatus", err)
	}
	return nil
}

// GetLatestSyncStatus returns the most recently written sync status row
// for the given repository and resource type, or nil if none exists.
func (t *Tx) GetLatestSyncStatus(repoID ids.RepositoryID, resource ids.ResourceType) (*model.SyncStatus, error) {
	rows, err := t.ListSyncStatusByRepository(repoID)
	if err != nil {
		return nil, err
	}
	var latest *model.SyncStatus
	for _, s := range rows {
		if s.ResourceType != resource {
			continue
		}
		if latest == nil || s.LastSyncedAt.After(latest.LastSyncedAt) {
			latest = s
		}
	}
	return latest, nil
}

// ListSyncStatusByRepository returns every sync status row for repoID,
// ordered oldest to newest.
func (t *Tx) ListSyncStatusByRepository(repoID ids.RepositoryID) ([]*model.SyncStatus, error) {
	var out []*model.SyncStatus
	for _, key := range indexGet(t.tx, idxSyncStatusByRepo, repoID.ToKey()) {
		var s model.SyncStatus
		data := t.tx.Bucket(bucketSyncStatus).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, ids.Storage("ListSyncStatusByRepository", err)
		}
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSyncedAt.Before(out[j].LastSyncedAt) })
	return out, nil
}

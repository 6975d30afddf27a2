package ts

import (
	"encoding/json"
	"fmt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveProject upserts a project row, keyed by GitHub's GraphQL node id.
func (t *Tx) SaveProject(p *model.Project) error {
	if err := putJSON(t.tx, bucketProjects, p.ID.ToKey(), p); err != nil {
		return ids.Storage("SaveProject", err)
	}
	return nil
}

// GetProject looks up a project by id.
func (t *Tx) GetProject(id ids.ProjectID) (*model.Project, error) {
	var p model.Project
	found, err := getJSON(t.tx, bucketProjects, id.ToKey(), &p)
	if err != nil {
		return nil, ids.Storage("GetProject", err)
	}
	if !found {
		return nil, ids.NotFound("GetProject", fmt.Errorf("project %q not found", id))
	}
	return &p, nil
}

// SaveProjectItem upserts a project item row and maintains the
// by-project index.
func (t *Tx) SaveProjectItem(pi *model.ProjectItem) error {
	if err := putJSON(t.tx, bucketProjectItems, pi.ID.ToKey(), pi); err != nil {
		return ids.Storage("SaveProjectItem", err)
	}
	if err := indexAdd(t.tx, idxProjectItemsByProj, pi.ProjectID.ToKey(), pi.ID.ToKey()); err != nil {
		return ids.Storage("SaveProjectItem", err)
	}
	return nil
}

// ListProjectItems returns every item attached to a project.
func (t *Tx) ListProjectItems(projectID ids.ProjectID) ([]*model.ProjectItem, error) {
	var out []*model.ProjectItem
	for _, key := range indexGet(t.tx, idxProjectItemsByProj, projectID.ToKey()) {
		var pi model.ProjectItem
		data := t.tx.Bucket(bucketProjectItems).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &pi); err != nil {
			return nil, ids.Storage("ListProjectItems", err)
		}
		out = append(out, &pi)
	}
	return out, nil
}

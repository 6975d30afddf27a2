package ts

import (
	"encoding/json"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveCrossReference upserts a cross-reference row. The sync engine
// derives its id deterministically from the source item, the target
// owner/repo#number, and the resolved target type, so re-running
// extraction over an unchanged body is a no-op rewrite rather than a
// duplicate.
func (t *Tx) SaveCrossReference(cr *model.CrossReference) error {
	if err := putJSON(t.tx, bucketCrossRefs, cr.ID.ToKey(), cr); err != nil {
		return ids.Storage("SaveCrossReference", err)
	}
	if err := indexAdd(t.tx, idxCrossRefsBySource, cr.SourceRepositoryID.ToKey(), cr.ID.ToKey()); err != nil {
		return ids.Storage("SaveCrossReference", err)
	}
	if err := indexAdd(t.tx, idxCrossRefsByTarget, cr.TargetRepositoryID.ToKey(), cr.ID.ToKey()); err != nil {
		return ids.Storage("SaveCrossReference", err)
	}
	return nil
}

// ListOutgoingCrossReferences returns every cross-reference whose
// source is the given repository, type, and local id, filtered from
// the repository-level source index in memory.
func (t *Tx) ListOutgoingCrossReferences(repoID ids.RepositoryID, sourceType ids.ItemType, sourceID int64) ([]*model.CrossReference, error) {
	var out []*model.CrossReference
	for _, key := range indexGet(t.tx, idxCrossRefsBySource, repoID.ToKey()) {
		var cr model.CrossReference
		data := t.tx.Bucket(bucketCrossRefs).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &cr); err != nil {
			return nil, ids.Storage("ListOutgoingCrossReferences", err)
		}
		if cr.SourceType == sourceType && cr.SourceID == sourceID {
			out = append(out, &cr)
		}
	}
	return out, nil
}

// ListIncomingCrossReferences returns every cross-reference whose
// target is the given repository, type, and GitHub-visible number.
func (t *Tx) ListIncomingCrossReferences(repoID ids.RepositoryID, targetType ids.ItemType, targetNumber int64) ([]*model.CrossReference, error) {
	var out []*model.CrossReference
	for _, key := range indexGet(t.tx, idxCrossRefsByTarget, repoID.ToKey()) {
		var cr model.CrossReference
		data := t.tx.Bucket(bucketCrossRefs).Get(key)
		if data == nil {
			continue
		}
		if err := json.Unmarshal(data, &cr); err != nil {
			return nil, ids.Storage("ListIncomingCrossReferences", err)
		}
		if cr.TargetType == targetType && cr.TargetNumber == targetNumber {
			out = append(out, &cr)
		}
	}
	return out, nil
}

// deleteCrossReferencesForRepository removes every cross-reference that
// names repoID as either source or target, called from DeleteRepository.
func (t *Tx) deleteCrossReferencesForRepository(repoID ids.RepositoryID) error {
	for _, key := range indexGet(t.tx, idxCrossRefsBySource, repoID.ToKey()) {
		if err := t.deleteCrossReferenceByKey(key); err != nil {
			return ids.Storage("deleteCrossReferencesForRepository", err)
		}
	}
	for _, key := range indexGet(t.tx, idxCrossRefsByTarget, repoID.ToKey()) {
		if err := t.deleteCrossReferenceByKey(key); err != nil {
			return ids.Storage("deleteCrossReferencesForRepository", err)
		}
	}
	_ = t.tx.Bucket(idxCrossRefsBySource).Delete(repoID.ToKey())
	_ = t.tx.Bucket(idxCrossRefsByTarget).Delete(repoID.ToKey())
	return nil
}

func (t *Tx) deleteCrossReferenceByKey(key []byte) error {
	data := t.tx.Bucket(bucketCrossRefs).Get(key)
	if data == nil {
		return nil
	}
	var cr model.CrossReference
	if err := json.Unmarshal(data, &cr); err != nil {
		return err
	}
	if err := deleteKey(t.tx, bucketCrossRefs, key); err != nil {
		return err
	}
	_ = indexRemove(t.tx, idxCrossRefsBySource, cr.SourceRepositoryID.ToKey(), key)
	_ = indexRemove(t.tx, idxCrossRefsByTarget, cr.TargetRepositoryID.ToKey(), key)
	return nil
}

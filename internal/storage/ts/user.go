package ts

import (
	"encoding/json"
	"fmt"

	"github.com/hlfshell/gitdb/internal/ids"
	"github.com/hlfshell/gitdb/internal/model"
)

// SaveUser upserts a user row, keyed by GitHub's numeric user id.
func (t *Tx) SaveUser(u *model.User) error {
	if err := putJSON(t.tx, bucketUsers, u.ID.ToKey(), u); err != nil {
		return ids.Storage("SaveUser", err)
	}
	return nil
}

// GetUser looks up a user by id.
func (t *Tx) GetUser(id ids.UserID) (*model.User, error) {
	var u model.User
	found, err := getJSON(t.tx, bucketUsers, id.ToKey(), &u)
	if err != nil {
		return nil, ids.Storage("GetUser", err)
	}
	if !found {
		return nil, ids.NotFound("GetUser", fmt.Errorf("user %d not found", id))
	}
	return &u, nil
}

// SaveParticipant upserts a participant row under its composite key.
func (t *Tx) SaveParticipant(p *model.Participant) error {
	if err := putJSON(t.tx, bucketParticipants, []byte(p.Key()), p); err != nil {
		return ids.Storage("SaveParticipant", err)
	}
	return nil
}

// ListParticipantsByItem scans the participants bucket for rows whose
// composite key is prefixed by itemRef's string form. The bucket is
// expected to stay small relative to issues/comments, so a scan here
// avoids maintaining yet another secondary index.
func (t *Tx) ListParticipantsByItem(itemRef ids.ItemRef) ([]*model.Participant, error) {
	prefix := itemRef.String() + ":"
	b := t.tx.Bucket(bucketParticipants)
	var out []*model.Participant
	err := b.ForEach(func(k, v []byte) error {
		if len(k) < len(prefix) || string(k[:len(prefix)]) != prefix {
			return nil
		}
		var p model.Participant
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		out = append(out, &p)
		return nil
	})
	if err != nil {
		return nil, ids.Storage("ListParticipantsByItem", err)
	}
	return out, nil
}

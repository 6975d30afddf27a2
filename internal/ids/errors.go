// Package ids defines the typed identifiers, enumerations, and error
// taxonomy shared by every gitdb package, so storage, sync, and query
// code never pass a raw int64 or a bare string where a specific kind of
// id is expected.
package ids

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by the taxonomy in the error handling design:
// BadInput, NotFound, Upstream, Storage, Cancelled, Internal.
type Kind string

const (
	// KindBadInput covers malformed specifiers, malformed short
	// references, and invalid query modes.
	KindBadInput Kind = "bad_input"

	// KindNotFound covers repositories, issues, or PRs absent locally.
	KindNotFound Kind = "not_found"

	// KindUpstream covers HTTP non-2xx, rate limiting, and network
	// failures from the GitHub client.
	KindUpstream Kind = "upstream"

	// KindStorage covers transactional or search store IO errors and
	// unique constraint conflicts.
	KindStorage Kind = "storage"

	// KindCancelled covers caller-initiated cancellation.
	KindCancelled Kind = "cancelled"

	// KindInternal covers unreachable invariants.
	KindInternal Kind = "internal"
)

// Error is the typed error gitdb uses across storage, sync, and query
// boundaries. Op names the failing operation; Err is the underlying
// cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ids.NotFound("", nil)) etc. work for
// sentinel-style comparisons against the Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotFound builds a KindNotFound error.
func NotFound(op string, err error) *Error { return New(KindNotFound, op, err) }

// BadInput builds a KindBadInput error.
func BadInput(op string, err error) *Error { return New(KindBadInput, op, err) }

// Storage builds a KindStorage error.
func Storage(op string, err error) *Error { return New(KindStorage, op, err) }

// Upstream builds a KindUpstream error.
func Upstream(op string, err error) *Error { return New(KindUpstream, op, err) }

// Cancelled builds a KindCancelled error.
func Cancelled(op string) *Error { return New(KindCancelled, op, nil) }

// Internal builds a KindInternal error.
func Internal(op string, err error) *Error { return New(KindInternal, op, err) }

// Conflict is a KindStorage error naming the conflicting unique key.
func Conflict(op, key string) *Error {
	return New(KindStorage, op, fmt.Errorf("conflict: %s already exists", key))
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, returning KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

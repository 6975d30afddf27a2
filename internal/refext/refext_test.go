package refext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlfshell/gitdb/internal/ids"
)

var src = ids.ItemRef{RepositoryID: 1, Type: ids.ItemTypeIssue, Number: 5}

// TestExtract_URLForm tests that a full GitHub URL yields a candidate
// with a concrete type hint taken from the issues/pull segment.
func TestExtract_URLForm(t *testing.T) {
	body := "see https://github.com/tokio-rs/tokio/issues/42 and https://github.com/tokio-rs/tokio/pull/7 for context"

	got := Extract(body, src)

	require := assert.New(t)
	require.Len(got, 2)
	require.Equal("tokio-rs", got[0].Owner)
	require.Equal(int64(42), got[0].Number)
	require.Equal(HintIssue, got[0].Hint)
	require.Equal(HintPullRequest, got[1].Hint)
}

// TestExtract_ShortForm tests that "owner/repo#N" produces one
// ambiguous candidate, not two.
func TestExtract_ShortForm(t *testing.T) {
	got := Extract("fixed by rust-lang/rust#123", src)

	require := assert.New(t)
	require.Len(got, 1)
	require.Equal("rust-lang/rust", got[0].FullName())
	require.Equal(int64(123), got[0].Number)
	require.Equal(HintAmbiguous, got[0].Hint)
}

// TestExtract_UnparseableNumberSkipped tests that a candidate whose
// number doesn't parse is dropped rather than failing the whole scan.
func TestExtract_UnparseableNumberSkipped(t *testing.T) {
	got := Extract("not a real ref: owner/repo#99999999999999999999", src)
	assert.Empty(t, got)
}

// TestExtract_NoMatchesReturnsEmpty tests plain prose with no
// references.
func TestExtract_NoMatchesReturnsEmpty(t *testing.T) {
	assert.Empty(t, Extract("just a normal comment with no links", src))
}

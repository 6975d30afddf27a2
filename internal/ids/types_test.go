package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewRepositoryName_Valid tests that a well-formed owner/name string
// parses into its Owner and Name parts.
func TestNewRepositoryName_Valid(t *testing.T) {
	name, err := NewRepositoryName("rust-lang/rust")

	assert.NoError(t, err)
	assert.Equal(t, "rust-lang", name.Owner)
	assert.Equal(t, "rust", name.Name)
	assert.Equal(t, "rust-lang/rust", name.FullName())
}

// TestNewRepositoryName_RejectsWhitespace tests that a name containing
// whitespace is rejected with BadInput.
func TestNewRepositoryName_RejectsWhitespace(t *testing.T) {
	_, err := NewRepositoryName("rust-lang /rust")

	assert.Error(t, err)
	assert.Equal(t, KindBadInput, KindOf(err))
}

// TestNewRepositoryName_RejectsWrongSlashCount tests that zero or more
// than one slash is rejected.
func TestNewRepositoryName_RejectsWrongSlashCount(t *testing.T) {
	cases := []string{"rust-lang", "rust-lang/rust/extra", ""}

	for _, c := range cases {
		_, err := NewRepositoryName(c)
		assert.Errorf(t, err, "expected error for %q", c)
	}
}

// TestError_Is tests that two *Error values of the same Kind compare
// equal under errors.Is, so callers can check kind without type asserting.
func TestError_Is(t *testing.T) {
	a := NotFound("GetRepository", nil)
	b := NotFound("GetIssue", nil)
	c := BadInput("ParseRepoSpecifier", nil)

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := MissingArtifact("data/df.parquet")
	wrapped := Wrap(base, "load results")

	assert.Equal(t, CodeMissingArtifact, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeMissingArtifact))
	assert.Contains(t, wrapped.Error(), "df.parquet")
}

func TestHasCodeThroughForeignWrap(t *testing.T) {
	err := fmt.Errorf("startup: %w", SchemaMismatch("embedding has %d rows, dataset has %d", 3, 4))

	assert.True(t, HasCode(err, CodeSchemaMismatch))
	assert.False(t, HasCode(err, CodeFetchError))
	assert.Equal(t, CodeSchemaMismatch, GetCode(err))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestFetchErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := FetchError("hub file df.parquet", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeFetchError, GetCode(err))
}

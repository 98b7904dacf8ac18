package cache

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBlobWithDigest(t *testing.T) {
	bs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	digest, err := bs.StoreBlob(context.Background(), `"abc123"`, strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, `"abc123"`, digest)

	ok, err := bs.BlobExists("abc123")
	require.NoError(t, err)
	assert.True(t, ok, "quotes are stripped from etags")

	content, err := os.ReadFile(bs.BlobPath(digest))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestStoreBlobContentAddressed(t *testing.T) {
	bs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	digest, err := bs.StoreBlob(context.Background(), "", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)
}

func TestRefsAndLinks(t *testing.T) {
	bs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	ref, err := bs.ReadRef("repo/main/petase/df.parquet")
	require.NoError(t, err)
	assert.Empty(t, ref)

	digest, err := bs.StoreBlob(context.Background(), "etag-1", strings.NewReader("table"))
	require.NoError(t, err)
	require.NoError(t, bs.WriteRef("repo/main/petase/df.parquet", digest))

	ref, err = bs.ReadRef("repo/main/petase/df.parquet")
	require.NoError(t, err)
	assert.Equal(t, "etag-1", ref)

	path, err := bs.Link(digest, "repo/main/petase", "df.parquet")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "df.parquet"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "table", string(content))
}

func TestStoreBlobHonoursCancellation(t *testing.T) {
	bs, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bs.StoreBlob(ctx, "x", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore is a content-addressed download cache on the local filesystem.
// Blobs live under blobs/<digest>; refs map a remote name to a digest.
type BlobStore struct {
	basePath string
}

// NewBlobStore creates a blob store rooted at basePath
func NewBlobStore(basePath string) (*BlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &BlobStore{basePath: basePath}, nil
}

// Root returns the cache directory
func (bs *BlobStore) Root() string {
	return bs.basePath
}

// BlobPath returns where the blob with the given digest is stored
func (bs *BlobStore) BlobPath(digest string) string {
	return bs.keyToPath("blobs/" + sanitize(digest))
}

// BlobExists checks if a blob with the given digest is cached
func (bs *BlobStore) BlobExists(digest string) (bool, error) {
	_, err := os.Stat(bs.BlobPath(digest))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check blob existence: %w", err)
}

// StoreBlob streams r into the cache. An empty digest stores the blob under
// the sha256 of its content. The write is atomic: readers never see a
// partially downloaded blob.
func (bs *BlobStore) StoreBlob(ctx context.Context, digest string, r io.Reader) (string, error) {
	dir := bs.keyToPath("blobs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hash), &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close blob: %w", err)
	}

	if digest == "" {
		digest = hex.EncodeToString(hash.Sum(nil))
	}
	final := bs.BlobPath(digest)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("failed to move blob into place: %w", err)
	}
	return digest, nil
}

// ReadRef returns the digest a name points at, or "" when unknown
func (bs *BlobStore) ReadRef(name string) (string, error) {
	content, err := os.ReadFile(bs.refPath(name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}
	return strings.TrimSpace(string(content)), nil
}

// WriteRef points name at digest
func (bs *BlobStore) WriteRef(name, digest string) error {
	path := bs.refPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create ref directory: %w", err)
	}
	return os.WriteFile(path, []byte(digest+"\n"), 0644)
}

// Link exposes a cached blob under a readable file name inside dir and
// returns that path. The loader needs real file names to pick parsers.
func (bs *BlobStore) Link(digest, dir, fileName string) (string, error) {
	target := bs.keyToPath(filepath.ToSlash(filepath.Join("snapshots", dir, fileName)))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	_ = os.Remove(target)
	if err := os.Link(bs.BlobPath(digest), target); err != nil {
		if err := copyFile(bs.BlobPath(digest), target); err != nil {
			return "", err
		}
	}
	return target, nil
}

func (bs *BlobStore) refPath(name string) string {
	return bs.keyToPath("refs/" + name)
}

// keyToPath converts a slash-separated key to a filesystem path
func (bs *BlobStore) keyToPath(key string) string {
	return filepath.Join(bs.basePath, filepath.FromSlash(key))
}

func sanitize(digest string) string {
	digest = strings.TrimPrefix(digest, "W/")
	digest = strings.Trim(digest, `"`)
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(digest)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open cached blob: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy cached blob: %w", err)
	}
	return out.Close()
}

// ctxReader stops a copy once the context is cancelled
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

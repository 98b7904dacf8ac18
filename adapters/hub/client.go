package hub

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"zymeboard/internal/cache"
	"zymeboard/internal/errors"
)

// ErrNotFound marks a path the hub does not know
var ErrNotFound = fmt.Errorf("not found on hub")

// Config describes one dataset repository on the hub
type Config struct {
	Endpoint string
	Repo     string
	Revision string
	Token    string
	Timeout  time.Duration
}

// Client downloads dataset repository files into a content-addressed cache
type Client struct {
	cfg   Config
	http  *http.Client
	blobs *cache.BlobStore
}

// NewClient creates a hub client that caches into blobs
func NewClient(cfg Config, blobs *cache.BlobStore) *Client {
	if cfg.Revision == "" {
		cfg.Revision = "main"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		blobs: blobs,
	}
}

// ResolveURL returns the download URL of a repository file
func (c *Client) ResolveURL(filePath string) string {
	escaped := make([]string, 0)
	for _, part := range strings.Split(strings.Trim(filePath, "/"), "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return strings.TrimRight(c.cfg.Endpoint, "/") + "/datasets/" + c.cfg.Repo +
		"/resolve/" + url.PathEscape(c.cfg.Revision) + "/" + strings.Join(escaped, "/")
}

// Download makes filePath available locally and returns its path. The blob
// is fetched only when the remote etag differs from the cached ref.
func (c *Client) Download(ctx context.Context, filePath string) (string, error) {
	for _, p := range []string{c.cfg.Repo, c.cfg.Revision, filePath} {
		if !SafePath(p) {
			return "", errors.FetchError(filePath, errors.InvalidInput(fmt.Sprintf("unsafe hub path %q", p)))
		}
	}
	refName := path.Join(c.cfg.Repo, c.cfg.Revision, filePath)
	target := c.ResolveURL(filePath)

	etag, err := c.head(ctx, target)
	if err != nil {
		return "", err
	}

	cached, err := c.blobs.ReadRef(refName)
	if err != nil {
		return "", err
	}
	if etag != "" && cached == etag {
		if ok, _ := c.blobs.BlobExists(etag); ok {
			log.Printf("[Hub] %s is cached (etag %s)", filePath, etag)
			return c.blobs.Link(etag, path.Join(c.cfg.Repo, c.cfg.Revision, path.Dir(filePath)), path.Base(filePath))
		}
	}

	start := time.Now()
	digest, err := c.get(ctx, target, etag)
	if err != nil {
		return "", err
	}
	if err := c.blobs.WriteRef(refName, digest); err != nil {
		return "", err
	}
	log.Printf("[Hub] Downloaded %s in %s", filePath, time.Since(start).Round(time.Millisecond))

	return c.blobs.Link(digest, path.Join(c.cfg.Repo, c.cfg.Revision, path.Dir(filePath)), path.Base(filePath))
}

// SafePath reports whether p is a clean relative path whose elements never
// leave the directory it is joined to
func SafePath(p string) bool {
	if p == "" || path.IsAbs(p) || path.Clean(p) != p || strings.Contains(p, "\\") {
		return false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." || part == "." {
			return false
		}
	}
	return true
}

func (c *Client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("User-Agent", "zymeboard")
	return req, nil
}

// head resolves the file's etag. Large files answer with a redirect whose
// X-Linked-Etag carries the content hash.
func (c *Client) head(ctx context.Context, target string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodHead, target)
	if err != nil {
		return "", errors.FetchError(target, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.FetchError(target, err)
	}
	resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", errors.FetchError(target, err)
	}

	etag := resp.Header.Get("X-Linked-Etag")
	if etag == "" {
		etag = resp.Header.Get("ETag")
	}
	return normalizeEtag(etag), nil
}

func (c *Client) get(ctx context.Context, target, etag string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target)
	if err != nil {
		return "", errors.FetchError(target, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.FetchError(target, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", errors.FetchError(target, err)
	}

	digest, err := c.blobs.StoreBlob(ctx, etag, resp.Body)
	if err != nil {
		return "", errors.FetchError(target, err)
	}
	return digest, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("access denied (%s); set HF_TOKEN for gated datasets", resp.Status)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

func normalizeEtag(etag string) string {
	etag = strings.TrimPrefix(strings.TrimSpace(etag), "W/")
	return strings.Trim(etag, `"`)
}

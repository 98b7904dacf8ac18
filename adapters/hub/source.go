package hub

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"path"

	"zymeboard/internal/errors"
	"zymeboard/ports"

	"golang.org/x/sync/errgroup"
)

// Remote file names under <dataset name>/
const (
	TableFile   = "df.parquet"
	ArchiveFile = "X_red_mst_slc.npz"
	CardFile    = "README.md"
)

// Source resolves a dataset name on the hub to a local bundle
type Source struct {
	client *Client
	name   string
}

// NewSource creates a hub source for the named dataset
func NewSource(client *Client, name string) *Source {
	return &Source{client: client, name: name}
}

// Kind implements ports.ArtifactSource
func (s *Source) Kind() string { return "hub" }

// Fetch downloads the table and the combined archive concurrently. The
// dataset card is optional and its absence is not an error.
func (s *Source) Fetch(ctx context.Context) (*ports.Bundle, error) {
	if s.name == "" {
		return nil, errors.FetchError("hub dataset", errors.InvalidInput("dataset name is empty"))
	}
	if !SafePath(s.name) {
		return nil, errors.FetchError("hub dataset", errors.InvalidInput(fmt.Sprintf("dataset name %q is not a plain relative path", s.name)))
	}

	bundle := &ports.Bundle{Name: s.name}
	var archive string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.client.Download(gctx, path.Join(s.name, TableFile))
		bundle.TablePath = p
		return err
	})
	g.Go(func() error {
		p, err := s.client.Download(gctx, path.Join(s.name, ArchiveFile))
		archive = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "dataset %q could not be resolved on the hub", s.name)
	}
	bundle.ArrayPaths = []string{archive}

	card, err := s.client.Download(ctx, path.Join(s.name, CardFile))
	switch {
	case err == nil:
		bundle.CardPath = card
	case stderrors.Is(err, ErrNotFound):
		log.Printf("[Hub] %s has no dataset card", s.name)
	default:
		log.Printf("[Hub] Warning: dataset card unavailable: %v", err)
	}

	return bundle, nil
}

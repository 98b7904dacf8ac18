package artifacts

import (
	"context"
	"os"
	"path/filepath"

	"zymeboard/adapters/table"
	"zymeboard/internal/errors"
	"zymeboard/ports"
)

// File names of a result set
const (
	TableStem      = "df"
	EmbeddingFile  = "X_red.npz"
	StructuresFile = "hdbscan_structures.npz"
	CombinedFile   = "X_red_mst_slc.npz"
	CardFile       = "README.md"

	EmbeddingKey = "X_red"
	TreeKey      = "mst"
	LinkageKey   = "linkage"
)

// LocalSource serves a result set from a directory
type LocalSource struct {
	dir string
}

// NewLocalSource creates a source rooted at dir
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Kind implements ports.ArtifactSource
func (s *LocalSource) Kind() string { return "local" }

// Fetch locates the table and array archives. Either the combined archive
// or both the embedding and structures archives must be present.
func (s *LocalSource) Fetch(ctx context.Context) (*ports.Bundle, error) {
	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return nil, errors.MissingArtifact(s.dir)
	}
	return ResolveBundle(s.dir, filepath.Base(filepath.Clean(s.dir)))
}

// ResolveBundle finds the result files inside dir
func ResolveBundle(dir, name string) (*ports.Bundle, error) {
	bundle := &ports.Bundle{Name: name}

	for _, candidate := range table.SupportedNames(TableStem) {
		path := filepath.Join(dir, candidate)
		if fileExists(path) {
			bundle.TablePath = path
			break
		}
	}
	if bundle.TablePath == "" {
		return nil, errors.MissingArtifact(filepath.Join(dir, TableStem+".parquet"))
	}

	if combined := filepath.Join(dir, CombinedFile); fileExists(combined) {
		bundle.ArrayPaths = []string{combined}
	} else {
		for _, name := range []string{EmbeddingFile, StructuresFile} {
			path := filepath.Join(dir, name)
			if !fileExists(path) {
				return nil, errors.MissingArtifact(path)
			}
			bundle.ArrayPaths = append(bundle.ArrayPaths, path)
		}
	}

	if card := filepath.Join(dir, CardFile); fileExists(card) {
		bundle.CardPath = card
	}

	return bundle, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

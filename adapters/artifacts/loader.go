package artifacts

import (
	"context"
	"log"
	"os"
	"time"

	"zymeboard/adapters/npz"
	"zymeboard/adapters/table"
	"zymeboard/domain/results"
	"zymeboard/internal/errors"
	"zymeboard/ports"

	"gonum.org/v1/gonum/mat"
)

// Options controls how a bundle is parsed and checked
type Options struct {
	LegendAttribute string
	IDColumn        string
}

// Load fetches a bundle from src, parses it and validates that every
// artifact lines up with the dataset rows.
func Load(ctx context.Context, src ports.ArtifactSource, opts Options) (*results.Results, error) {
	start := time.Now()

	bundle, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	res, err := ParseBundle(bundle, opts)
	if err != nil {
		return nil, err
	}

	log.Printf("[Loader] %s source %q loaded in %s (%d records, %d tree edges, %d merges)",
		src.Kind(), res.Name, time.Since(start).Round(time.Millisecond),
		res.Dataset.Len(), len(res.Tree.Edges), len(res.Linkage.Steps))
	return res, nil
}

// ParseBundle reads the files named by bundle into Results
func ParseBundle(bundle *ports.Bundle, opts Options) (*results.Results, error) {
	ds, err := table.NewDataReader(bundle.TablePath).ReadData()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read protein table")
	}

	arrays, err := readArrays(bundle.ArrayPaths)
	if err != nil {
		return nil, err
	}

	res := &results.Results{
		Name:      bundle.Name,
		Dataset:   ds,
		Embedding: &results.Embedding{Coords: arrays[EmbeddingKey]},
	}

	if res.Tree, err = results.TreeFromMatrix(arrays[TreeKey]); err != nil {
		return nil, err
	}
	if res.Linkage, err = results.LinkageFromMatrix(arrays[LinkageKey]); err != nil {
		return nil, err
	}

	if err := res.Validate(opts.LegendAttribute); err != nil {
		return nil, errors.Wrap(err, "result artifacts are inconsistent")
	}

	if res.IDColumn, err = table.DetectIDColumn(ds, opts.IDColumn); err != nil {
		log.Printf("[Loader] Warning: %v; hover text falls back to row numbers", err)
		res.IDColumn = ""
	}

	if bundle.CardPath != "" {
		if card, err := os.ReadFile(bundle.CardPath); err == nil {
			res.DatasetCard = string(card)
		} else {
			log.Printf("[Loader] Warning: could not read dataset card %s: %v", bundle.CardPath, err)
		}
	}

	return res, nil
}

// readArrays collects the embedding, tree and linkage arrays across one or
// more archives. The first archive holding a key wins.
func readArrays(paths []string) (map[string]*mat.Dense, error) {
	wanted := []string{EmbeddingKey, TreeKey, LinkageKey}
	out := make(map[string]*mat.Dense, len(wanted))

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.MissingArtifact(path)
		}
		archive, err := npz.Open(path)
		if err != nil {
			return nil, err
		}
		for _, key := range wanted {
			if _, done := out[key]; done || !archive.Has(key) {
				continue
			}
			m, err := archive.Matrix(key)
			if err != nil {
				archive.Close()
				return nil, err
			}
			out[key] = m
		}
		archive.Close()
	}

	for _, key := range wanted {
		if _, ok := out[key]; !ok {
			return nil, errors.SchemaMismatch("no archive in %v holds array %q", paths, key)
		}
	}
	return out, nil
}

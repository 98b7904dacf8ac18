// Package npz reads numpy .npz archives into gonum matrices.
package npz

import (
	"archive/zip"
	"fmt"
	"log"
	"sort"
	"strings"

	"zymeboard/internal/errors"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Archive is an opened .npz file
type Archive struct {
	path    string
	zr      *zip.ReadCloser
	members map[string]*zip.File
}

// Open opens an .npz archive for reading
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.SchemaMismatch("%s is not an npz archive: %v", path, err), "failed to open archive")
	}
	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ".npy")] = f
	}
	return &Archive{path: path, zr: zr, members: members}, nil
}

// Close releases the underlying file
func (a *Archive) Close() error {
	return a.zr.Close()
}

// Keys lists the array names stored in the archive
func (a *Archive) Keys() []string {
	keys := make([]string, 0, len(a.members))
	for k := range a.members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the archive stores an array under key
func (a *Archive) Has(key string) bool {
	_, ok := a.members[key]
	return ok
}

// Matrix decodes a 1D or 2D numeric array as a dense float64 matrix.
// A 1D array becomes a single column.
func (a *Archive) Matrix(key string) (*mat.Dense, error) {
	member, ok := a.members[key]
	if !ok {
		return nil, errors.SchemaMismatch("archive %s has no array %q (have %v)", a.path, key, a.Keys())
	}

	rc, err := member.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s in %s", key, a.path)
	}
	defer rc.Close()

	r, err := npyio.NewReader(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read npy header of %s", key)
	}

	shape := r.Header.Descr.Shape
	rows, cols := 0, 1
	switch len(shape) {
	case 1:
		rows = shape[0]
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return nil, errors.SchemaMismatch("array %q has shape %v, want 1 or 2 dimensions", key, shape)
	}
	if rows == 0 || cols == 0 {
		return nil, errors.SchemaMismatch("array %q is empty (shape %v)", key, shape)
	}

	data, err := readFloats(r, r.Header.Descr.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", key)
	}
	if len(data) != rows*cols {
		return nil, errors.SchemaMismatch("array %q holds %d values, shape %v needs %d", key, len(data), shape, rows*cols)
	}

	if r.Header.Descr.Fortran && cols > 1 {
		data = fortranToRowMajor(data, rows, cols)
	}

	log.Printf("[npz] %s:%s decoded (%s, %dx%d)", a.path, key, r.Header.Descr.Type, rows, cols)
	return mat.NewDense(rows, cols, data), nil
}

func readFloats(r *npyio.Reader, dtype string) ([]float64, error) {
	switch strings.TrimLeft(dtype, "<|=") {
	case "f8":
		var out []float64
		err := r.Read(&out)
		return out, err
	case "f4":
		var raw []float32
		if err := r.Read(&raw); err != nil {
			return nil, err
		}
		out := make([]float64, len(raw))
		for i, v := range raw {
			out[i] = float64(v)
		}
		return out, nil
	case "i8":
		var raw []int64
		if err := r.Read(&raw); err != nil {
			return nil, err
		}
		out := make([]float64, len(raw))
		for i, v := range raw {
			out[i] = float64(v)
		}
		return out, nil
	case "i4":
		var raw []int32
		if err := r.Read(&raw); err != nil {
			return nil, err
		}
		out := make([]float64, len(raw))
		for i, v := range raw {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
}

func fortranToRowMajor(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = data[c*rows+r]
		}
	}
	return out
}

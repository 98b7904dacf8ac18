package npz

import (
	"os"
	"path/filepath"
	"testing"

	"zymeboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWriteThenReadMatrices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "X_red_mst_slc.npz")
	xRed := mat.NewDense(3, 2, []float64{0.1, 0.2, 1.1, 1.2, 2.1, 2.2})
	mst := mat.NewDense(2, 3, []float64{0, 1, 0.5, 1, 2, 0.7})

	require.NoError(t, WriteArchive(path, map[string]*mat.Dense{"X_red": xRed, "mst": mst}))

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"X_red", "mst"}, a.Keys())
	assert.True(t, a.Has("mst"))
	assert.False(t, a.Has("linkage"))

	got, err := a.Matrix("X_red")
	require.NoError(t, err)
	assert.True(t, mat.Equal(xRed, got))

	got, err = a.Matrix("mst")
	require.NoError(t, err)
	r, c := got.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.7, got.At(1, 2))
}

func TestMissingKeyIsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "X_red.npz")
	require.NoError(t, WriteArchive(path, map[string]*mat.Dense{"X_red": mat.NewDense(1, 2, nil)}))

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Matrix("linkage")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestOpenRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.npz")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestFortranToRowMajor(t *testing.T) {
	// column-major 2x3: columns (1,4) (2,5) (3,6)
	out := fortranToRowMajor([]float64{1, 4, 2, 5, 3, 6}, 2, 3)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, out)
}

package npz

import (
	"archive/zip"
	"os"
	"sort"

	"zymeboard/internal/errors"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// WriteArchive stores each matrix as <key>.npy inside a new .npz file
func WriteArchive(path string, arrays map[string]*mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	keys := make([]string, 0, len(arrays))
	for k := range arrays {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zw := zip.NewWriter(f)
	for _, key := range keys {
		w, err := zw.Create(key + ".npy")
		if err != nil {
			return errors.Wrapf(err, "failed to add %s to %s", key, path)
		}
		if err := npyio.Write(w, arrays[key]); err != nil {
			return errors.Wrapf(err, "failed to encode %s", key)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrapf(err, "failed to finish %s", path)
	}
	return f.Close()
}

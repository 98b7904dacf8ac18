package table

import (
	"os"
	"path/filepath"
	"testing"

	"zymeboard/domain/results"
	"zymeboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVTrimsAndDropsPandasIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "df.csv")
	content := "__index_level_0__, accession ,cluster\n0, P1 ,3\n1,P2,-1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"accession", "cluster"}, ds.Headers)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "P1", ds.Rows[0]["accession"])
	assert.Equal(t, "-1", ds.Rows[1]["cluster"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "df.parquet")).ReadData()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingArtifact))
}

func TestReadHeaderOnlyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "df.csv")
	require.NoError(t, os.WriteFile(path, []byte("accession,cluster\n"), 0o644))

	_, err := NewDataReader(path).ReadData()
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestDetectIDColumn(t *testing.T) {
	ds := &results.Dataset{
		Headers: []string{"cluster", "Accession", "organism"},
		Rows: []results.Row{
			{"cluster": "1", "Accession": "P1", "organism": "E. coli"},
			{"cluster": "1", "Accession": "P2", "organism": "E. coli"},
		},
	}

	col, err := DetectIDColumn(ds, "accession")
	require.NoError(t, err)
	assert.Equal(t, "Accession", col)

	ds.Rows[1]["Accession"] = "P1"
	_, err = DetectIDColumn(ds, "accession")
	assert.Error(t, err, "duplicate ids and a non-unique first column")
}

func TestSupportedNames(t *testing.T) {
	assert.Equal(t, []string{"df.parquet", "df.csv", "df.xlsx"}, SupportedNames("df"))
}

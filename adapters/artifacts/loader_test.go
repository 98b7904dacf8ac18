package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"zymeboard/internal/errors"
	"zymeboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultOpts = Options{LegendAttribute: "cluster", IDColumn: "accession"}

func writeFixture(t *testing.T, opts testkit.WriteOptions) string {
	t.Helper()
	res, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "petase_hits")
	require.NoError(t, testkit.WriteDir(dir, res, opts))
	return dir
}

func TestLoadLocalLayouts(t *testing.T) {
	layouts := map[string]testkit.WriteOptions{
		"csv split archives":      {TableFormat: testkit.FormatCSV},
		"parquet split archives":  {TableFormat: testkit.FormatParquet},
		"xlsx combined archive":   {TableFormat: testkit.FormatXLSX, Combined: true},
		"parquet combined + card": {TableFormat: testkit.FormatParquet, Combined: true, Card: "# PETase hits\n"},
	}

	for name, layout := range layouts {
		t.Run(name, func(t *testing.T) {
			dir := writeFixture(t, layout)

			res, err := Load(context.Background(), NewLocalSource(dir), defaultOpts)
			require.NoError(t, err)

			assert.Equal(t, "petase_hits", res.Name)
			assert.Equal(t, "accession", res.IDColumn)
			assert.Equal(t, res.Dataset.Len(), res.Embedding.Len())
			assert.Equal(t, res.Dataset.Len(), res.Linkage.Leaves())
			assert.Len(t, res.Tree.Edges, 99)
			assert.Equal(t, layout.Card, res.DatasetCard)
			assert.Equal(t, "SYN00003", res.Dataset.Rows[3]["accession"])
		})
	}
}

func TestLoadMissingTableIsMissingArtifact(t *testing.T) {
	dir := writeFixture(t, testkit.WriteOptions{})
	require.NoError(t, os.Remove(filepath.Join(dir, "df.csv")))

	_, err := Load(context.Background(), NewLocalSource(dir), defaultOpts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingArtifact), "got %v", err)
	assert.Contains(t, err.Error(), "df.parquet")
}

func TestLoadMissingStructuresIsMissingArtifact(t *testing.T) {
	dir := writeFixture(t, testkit.WriteOptions{})
	require.NoError(t, os.Remove(filepath.Join(dir, StructuresFile)))

	_, err := Load(context.Background(), NewLocalSource(dir), defaultOpts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMissingArtifact))
	assert.Contains(t, err.Error(), StructuresFile)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), NewLocalSource(filepath.Join(t.TempDir(), "nope")), defaultOpts)
	assert.True(t, errors.HasCode(err, errors.CodeMissingArtifact))
}

func TestLoadUnknownLegendIsSchemaMismatch(t *testing.T) {
	dir := writeFixture(t, testkit.WriteOptions{})

	_, err := Load(context.Background(), NewLocalSource(dir), Options{LegendAttribute: "ec_number"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

func TestLoadTruncatedTableIsSchemaMismatch(t *testing.T) {
	dir := writeFixture(t, testkit.WriteOptions{})
	res, err := testkit.Generate(testkit.GeneratorConfig{Records: 50, Clusters: 2, Seed: 1})
	require.NoError(t, err)
	require.NoError(t, testkit.WriteCSV(filepath.Join(dir, "df.csv"), res.Dataset))

	_, err = Load(context.Background(), NewLocalSource(dir), defaultOpts)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeSchemaMismatch))
}

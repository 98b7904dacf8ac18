package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zymeboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, cfg.SourceKind())
	assert.Equal(t, "data/", cfg.Data.Dir)
	assert.Equal(t, "cluster", cfg.Data.LegendAttribute)
	assert.Equal(t, "0.0.0.0:8050", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "zymeboard.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
data:
  input_dir: from-file/
  legend_attribute: family
server:
  port: "9000"
`), 0o644))

	t.Setenv("ZB_LEGEND_ATTRIBUTE", "ec_number")
	t.Setenv("PORT", "9100")

	cfg, err := Load([]string{"-config", file, "-port", "9200"})
	require.NoError(t, err)

	assert.Equal(t, "from-file/", cfg.Data.Dir, "file overrides default")
	assert.Equal(t, "ec_number", cfg.Data.LegendAttribute, "env overrides file")
	assert.Equal(t, "9200", cfg.Server.Port, "flag overrides env")
}

func TestSourceSelection(t *testing.T) {
	cfg, err := Load([]string{"-hub-name", "petase"})
	require.NoError(t, err)
	assert.Equal(t, SourceHub, cfg.SourceKind())
	assert.Equal(t, "petase", cfg.SourceName())

	cfg, err = Load([]string{"-hub-name", "petase", "-s3-url", "s3://bucket/results/petase"})
	require.NoError(t, err)
	assert.Equal(t, SourceS3, cfg.SourceKind())
	assert.Equal(t, "petase", cfg.SourceName())

	cfg, err = Load([]string{"-input-dir", "results/blast_hits/"})
	require.NoError(t, err)
	assert.Equal(t, "blast_hits", cfg.SourceName())
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load([]string{"-port", "http"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	_, err = Load([]string{"-s3-url", "bucket/prefix"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	_, err = Load([]string{"-unknown"})
	require.Error(t, err)

	for _, name := range []string{"../../..", "petase/..", "/petase"} {
		_, err = Load([]string{"-hub-name", name})
		require.Error(t, err, name)
		assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), name)
	}
}

func TestHelpPrintsUsage(t *testing.T) {
	_, err := Load([]string{"-h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.False(t, errors.HasCode(err, errors.CodeConfigInvalid))

	var help *HelpRequest
	require.ErrorAs(t, err, &help)
	assert.Contains(t, help.Usage, "-input-dir")
	assert.Contains(t, help.Usage, "-hub-name")
	assert.Contains(t, help.Usage, "URL prefix the dashboard is served under")
}

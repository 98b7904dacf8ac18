package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	m := New()
	m.PageView("")
	m.PageView("dim")
	m.PageView("dim")
	m.SharedStateWrite("selection")
	m.ObserveLoad("local", 120*time.Millisecond)
	m.SetDatasetRows(100)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pageViews.WithLabelValues("dim")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pageViews.WithLabelValues("/")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.datasetRows))

	count, err := testutil.GatherAndCount(m.Registry(), "zymeboard_artifact_load_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SharedStateWrite("shared")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `zymeboard_shared_state_writes_total{kind="shared"} 1`))
}

func TestSeparateInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

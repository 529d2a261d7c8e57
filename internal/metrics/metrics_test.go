package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/metrics"
)

func TestRecorder(t *testing.T) {
	r := metrics.NewRecorder()
	r.StageDone("fact_grid", 120, 2*time.Second)
	r.StageDone("fact_grid", 30, time.Second)
	r.StageSkipped("entities")
	r.RunFinished("succeeded")

	count, err := testutil.GatherAndCount(r.Registry(), "wells_rows_inserted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	path := filepath.Join(t.TempDir(), "wells.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `wells_rows_inserted_total{stage="fact_grid"} 150`)
	assert.Contains(t, body, `wells_stage_duration_seconds{stage="fact_grid"} 1`)
	assert.Contains(t, body, `wells_stage_skipped_total{stage="entities"} 1`)
	assert.Contains(t, body, `wells_runs_total{status="succeeded"} 1`)
}

func TestNilRecorder(t *testing.T) {
	var r *metrics.Recorder
	r.StageDone("metrics", 1, time.Millisecond)
	r.StageSkipped("metrics")
	r.RunFinished("failed")
	assert.Nil(t, r.Registry())
	require.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

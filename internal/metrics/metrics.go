// Package metrics records generation counters and stage durations in a
// Prometheus registry that can be flushed to a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wells"

// Recorder collects generation metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry      *prometheus.Registry
	rowsInserted  *prometheus.CounterVec
	stageSkipped  *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	runs          *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows inserted by a generation stage.",
		}, []string{"stage"}),
		stageSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_skipped_total",
			Help:      "Generation stages skipped because their output already existed.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last execution of a generation stage.",
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generation runs by final status.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.rowsInserted, r.stageSkipped, r.stageDuration, r.runs)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// StageDone records a completed stage.
func (r *Recorder) StageDone(stage string, rows int64, d time.Duration) {
	if r == nil {
		return
	}
	r.rowsInserted.WithLabelValues(stage).Add(float64(rows))
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// StageSkipped records a skipped stage.
func (r *Recorder) StageSkipped(stage string) {
	if r == nil {
		return
	}
	r.stageSkipped.WithLabelValues(stage).Inc()
}

// RunFinished records the final status of a run.
func (r *Recorder) RunFinished(status string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status).Inc()
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// exposition format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

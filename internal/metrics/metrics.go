// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from parse and load runs.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// Record helpers are always safe to call. Concrete systems (Prometheus
// Pushgateway, Datadog) live in subpackages and are installed with
// SetBackend at startup.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StepTotal           = "dsv_step_total"
	StepDurationSeconds = "dsv_step_duration_seconds"
	RecordsTotal        = "dsv_records_total"
	BatchesTotal        = "dsv_batches_total"
	BytesReadTotal      = "dsv_bytes_read_total"
)

// Record kinds used with RecordRow.
const (
	KindRows      = "rows"
	KindSkipped   = "skipped_lines"
	KindRowErrors = "row_errors"
	KindDuplicate = "duplicates"
	KindInserted  = "inserted"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one run step
// ("open", "parse", "load", ...).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind
// (see the Kind constants). Non-positive deltas are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments a batch-level counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{"job": job})
}

// RecordBytes counts raw input bytes consumed by the given job.
func RecordBytes(job string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(BytesReadTotal, float64(n), Labels{"job": job})
}

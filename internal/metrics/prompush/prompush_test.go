package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/sischcode/patti-csv/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func summaryCount(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	if err := v.WithLabelValues(labels...).(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("job", ""); err == nil {
		t.Fatalf("missing gateway URL must fail")
	}
	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.jobName != "pattidsv" {
		t.Fatalf("jobName = %q, want default", b.jobName)
	}
	if b.reg == nil || b.stepCounter == nil || b.bytesCounter == nil {
		t.Fatalf("collectors not initialised: %+v", b)
	}
}

/*
TestIncCounter routes every known metric name through the Backend and
checks the collector it lands in. Unknown names must not touch anything.
*/
func TestIncCounter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		metric string
		delta  float64
		labels metrics.Labels
		read   func(b *Backend) prometheus.Counter
	}{
		{"step", metrics.StepTotal, 3, metrics.Labels{"step": "parse", "status": "success"},
			func(b *Backend) prometheus.Counter { return b.stepCounter.WithLabelValues("parse", "success") }},
		{"records", metrics.RecordsTotal, 5, metrics.Labels{"kind": metrics.KindRows},
			func(b *Backend) prometheus.Counter { return b.recordCounter.WithLabelValues(metrics.KindRows) }},
		{"batches", metrics.BatchesTotal, 2.5, nil,
			func(b *Backend) prometheus.Counter { return b.batchCounter }},
		{"bytes", metrics.BytesReadTotal, 1024, nil,
			func(b *Backend) prometheus.Counter { return b.bytesCounter }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend("job", "http://example.com")
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			b.IncCounter("unknown_metric", 10, tt.labels)
			b.IncCounter(tt.metric, tt.delta, tt.labels)
			if got := counterValue(t, tt.read(b)); got != tt.delta {
				t.Fatalf("%s = %v, want %v", tt.metric, got, tt.delta)
			}
		})
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": metrics.KindRows})
	b.IncCounter(metrics.BatchesTotal, 1, nil)
	b.IncCounter(metrics.BytesReadTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 1, nil)
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("job", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	lbls := metrics.Labels{"step": "load", "status": "success"}
	b.ObserveHistogram(metrics.StepDurationSeconds, 1.5, lbls)
	b.ObserveHistogram("other_metric", 2, lbls)

	n, sum := summaryCount(t, b.stepDuration, "load", "success")
	if n != 1 || sum != 1.5 {
		t.Fatalf("summary = (%d, %v), want (1, 1.5)", n, sum)
	}
}

// TestFlush pushes to a fake Pushgateway and checks the grouping path.
func TestFlush(t *testing.T) {
	t.Parallel()

	type req struct {
		method, path string
		body         int
	}
	reqCh := make(chan req, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqCh <- req{r.Method, r.URL.Path, len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "parse", "status": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case got := <-reqCh:
		if got.method != http.MethodPut || !strings.Contains(got.path, "/job/nightly") || got.body == 0 {
			t.Fatalf("push request = %+v", got)
		}
	default:
		t.Fatalf("Flush() sent no request")
	}
}

func BenchmarkIncCounterRecord(b *testing.B) {
	backend, err := NewBackend("job", "http://example.com")
	if err != nil {
		b.Fatalf("NewBackend() error = %v", err)
	}
	labels := metrics.Labels{"kind": metrics.KindRows}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.IncCounter(metrics.RecordsTotal, 1, labels)
	}
}

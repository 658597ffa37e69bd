// Package metrics exposes Prometheus instrumentation for file and
// column IO.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesReadTotal tracks decoded pages by page type.
	PagesReadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_pages_read_total",
		Help: "Total number of pages read by page type",
	}, []string{"page_type"})

	// PagesWrittenTotal tracks written pages by page type.
	PagesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_pages_written_total",
		Help: "Total number of pages written by page type",
	}, []string{"page_type"})

	// ValuesDecodedTotal tracks decoded values by value encoding.
	ValuesDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_values_decoded_total",
		Help: "Total number of values decoded by encoding",
	}, []string{"encoding"})

	// DecodeErrorsTotal tracks decode failures by value encoding.
	DecodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_decode_errors_total",
		Help: "Total number of decode failures by encoding",
	}, []string{"encoding"})

	// FileWriteDuration tracks the time spent finalizing a file.
	FileWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quarry_file_write_duration_seconds",
		Help:    "Time taken to flush and finalize a file",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// RowGroupsFlushedTotal tracks flushed row groups.
	RowGroupsFlushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quarry_row_groups_flushed_total",
		Help: "Total number of row groups flushed to disk",
	})
)

// IncPageRead records one decoded page.
func IncPageRead(pageType string) {
	PagesReadTotal.WithLabelValues(pageType).Inc()
}

// IncPageWritten records one written page.
func IncPageWritten(pageType string) {
	PagesWrittenTotal.WithLabelValues(pageType).Inc()
}

// AddValuesDecoded records n decoded values for an encoding.
func AddValuesDecoded(encoding string, n int) {
	ValuesDecodedTotal.WithLabelValues(encoding).Add(float64(n))
}

// IncDecodeError records one decode failure for an encoding.
func IncDecodeError(encoding string) {
	DecodeErrorsTotal.WithLabelValues(encoding).Inc()
}

// ObserveFileWrite records the duration of a file finalization.
func ObserveFileWrite(duration time.Duration) {
	FileWriteDuration.Observe(duration.Seconds())
}

// IncRowGroupFlushed records one flushed row group.
func IncRowGroupFlushed() {
	RowGroupsFlushedTotal.Inc()
}

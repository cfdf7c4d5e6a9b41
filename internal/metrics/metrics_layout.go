package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	layoutBuildCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uber_layout_build_total",
			Help: "Total number of uber layout builds by result",
		},
		[]string{"result"},
	)

	layoutBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uber_layout_build_duration_seconds",
			Help:    "Uber layout build duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	EntriesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uber_entries_merged_total",
			Help: "Total number of archive entries contributed by sources",
		},
	)

	EntriesExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uber_entries_excluded_total",
			Help: "Total number of archive entries dropped by exclusion patterns",
		},
	)

	ConflictsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uber_conflicts_resolved_total",
			Help: "Total number of conflicting entries by resolution strategy",
		},
		[]string{"handler"},
	)
)

func LayoutBuildSucceeded(startTime time.Time) {
	layoutBuildCount.WithLabelValues("success").Inc()
	layoutBuildDuration.Observe(time.Since(startTime).Seconds())
}

func LayoutBuildFailed() {
	layoutBuildCount.WithLabelValues("failure").Inc()
}

// WriteTextfile writes all registered metrics to path in the Prometheus text
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

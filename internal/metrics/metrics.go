// Package metrics holds the Prometheus collectors for the trim controller.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollTicks counts poller ticks by outcome (ok, error).
	PollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipmark_poll_ticks_total",
		Help: "Playback position polls by outcome",
	}, []string{"result"})

	// BoundaryPauses counts pause commands issued at the preview end marker.
	BoundaryPauses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipmark_preview_boundary_pauses_total",
		Help: "Pause commands issued when preview playback reached the end marker",
	})

	// ExportRequests counts export requests by result (succeeded, failed, discarded).
	ExportRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipmark_export_requests_total",
		Help: "Export requests sent to the cut service by result",
	}, []string{"result"})

	// ExportDuration tracks how long the cut service takes to answer.
	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipmark_export_duration_seconds",
		Help:    "Time from export trigger to cut service response",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	// PollersActive is 1 while a poller is bound to a video identifier.
	PollersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clipmark_pollers_active",
		Help: "Playback pollers currently running",
	})
)

// ObservePoll records one poller tick.
func ObservePoll(err error) {
	if err != nil {
		PollTicks.WithLabelValues("error").Inc()
		return
	}
	PollTicks.WithLabelValues("ok").Inc()
}

// ObserveExport records the outcome and latency of an export request.
func ObserveExport(result string, duration time.Duration) {
	ExportRequests.WithLabelValues(result).Inc()
	ExportDuration.Observe(duration.Seconds())
}

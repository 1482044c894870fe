// Package metrics exposes Prometheus collectors for refreshes and rendering.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "datapass"

// Refresh request results
const (
	RequestAccepted  = "accepted"
	RequestDebounced = "debounced"
	RequestBusy      = "busy"
	RequestUnknown   = "unknown"
)

// Animation frame results
const (
	FrameRendered = "rendered"
	FrameSkipped  = "skipped"
)

var (
	RefreshRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_requests_total",
			Help:      "Refresh requests by gate result",
		},
		[]string{"result"},
	)

	FetchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_outcomes_total",
			Help:      "Completed fetches by outcome",
		},
		[]string{"outcome"},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Carrier page fetch and parse duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 7, 14},
		},
	)

	AnimationFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animation_frames_total",
			Help:      "Animation frames rendered or skipped while a draw was in flight",
		},
		[]string{"result"},
	)

	RegisteredWidgets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_widgets",
			Help:      "Widgets currently placed",
		},
	)
)

func init() {
	prometheus.MustRegister(RefreshRequestsTotal)
	prometheus.MustRegister(FetchOutcomesTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(AnimationFramesTotal)
	prometheus.MustRegister(RegisteredWidgets)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

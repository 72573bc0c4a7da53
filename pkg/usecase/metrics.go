package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSignalsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_signals_collected_total",
			Help: "Total number of signals collected per source",
		},
		[]string{"source"},
	)

	metricCollectorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_collector_failures_total",
			Help: "Total number of failed collector runs per source",
		},
		[]string{"source"},
	)

	metricUpdatesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prism_probability_updates_total",
			Help: "Total number of probability updates applied",
		},
	)

	metricUpdateRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "prism_update_run_duration_seconds",
			Help: "Duration of probability update runs in seconds",
		},
	)

	metricRisksLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prism_risks_loaded",
			Help: "Number of risks in the catalog",
		},
	)
)

// SetRisksLoadedMetric records the catalog size gauge
func SetRisksLoadedMetric(n int) {
	metricRisksLoaded.Set(float64(n))
}

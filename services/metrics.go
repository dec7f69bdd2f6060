package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	acquisitionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oceansaksham_location_acquisition_attempts_total",
		Help: "Acquisition strategy attempts by strategy and outcome",
	}, []string{"strategy", "outcome"})

	acquisitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oceansaksham_location_acquisition_duration_seconds",
		Help:    "Time taken by a full acquisition ladder run",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	fallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oceansaksham_location_fallback_total",
		Help: "Total number of synthesized fallback positions",
	})

	watchUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oceansaksham_location_watch_updates_total",
		Help: "Watch-mode readings by result (accepted or rejected)",
	}, []string{"result"})
)

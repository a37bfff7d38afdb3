package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundlecfg_resolutions_total",
			Help: "Total number of configuration resolutions",
		},
		[]string{"result"}, // success or error
	)

	resolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bundlecfg_resolution_duration_seconds",
			Help:    "Time taken to load and merge all fragments",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

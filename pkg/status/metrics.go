package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodedash",
		Name:      "refresh_total",
		Help:      "Status refreshes by derived node status",
	}, []string{"status"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nodedash",
		Name:      "refresh_duration_seconds",
		Help:      "Wall time of one status refresh",
		Buckets:   prometheus.DefBuckets,
	})
)

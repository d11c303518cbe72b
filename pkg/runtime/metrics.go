package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodedash",
		Subsystem: "runtime",
		Name:      "invocations_total",
		Help:      "Container runtime invocations by operation and outcome",
	}, []string{"op", "outcome"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nodedash",
		Subsystem: "runtime",
		Name:      "invocation_duration_seconds",
		Help:      "Time spent waiting for container runtime commands",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op"})

	elevatedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nodedash",
		Subsystem: "runtime",
		Name:      "elevated",
		Help:      "1 when runtime commands are run through sudo",
	})
)

func observeInvocation(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}

	invocationsTotal.WithLabelValues(op, outcome).Inc()
	invocationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

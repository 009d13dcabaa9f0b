package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	schedulingRuns     *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	conflictsRemaining prometheus.Gauge
	unscheduledTotal   prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Gauge, prometheus.Counter) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_runs_total",
			Help: "Number of scheduling runs, by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduling_run_duration_seconds",
			Help:    "Wall clock duration of scheduling runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)
	conf := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduling_conflicts_remaining",
			Help: "Conflicts left after the repair pass of the last run",
		},
	)
	unsched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "unscheduled_deliveries_total",
			Help: "Deliveries no run managed to place",
		},
	)
	return runs, dur, conf, unsched
}

func init() {
	schedulingRuns, runDuration, conflictsRemaining, unscheduledTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(schedulingRuns, runDuration, conflictsRemaining, unscheduledTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	schedulingRuns, runDuration, conflictsRemaining, unscheduledTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

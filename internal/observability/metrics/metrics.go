package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "machinehealth_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	rollupRequests *prometheus.CounterVec
	rollupLatency  *prometheus.HistogramVec

	durationQueries *prometheus.CounterVec
	durationLatency *prometheus.HistogramVec
	excludedSpans   prometheus.Counter

	classifyErrors prometheus.Counter

	activityTransitions *prometheus.CounterVec

	sweepRuns    *prometheus.CounterVec
	sweepLatency prometheus.Histogram

	limitEdits *prometheus.CounterVec

	exportsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		rollupRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rollup_requests_total",
				Help: "Total status rollup computations by result",
			},
			[]string{"result"},
		)
		rollupLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "rollup_latency_seconds",
				Help:    "Status rollup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		durationQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "duration_queries_total",
				Help: "Total state duration computations by result",
			},
			[]string{"result"},
		)
		durationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "duration_query_latency_seconds",
				Help:    "State duration computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		excludedSpans = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "excluded_spans_total",
				Help: "Spans excluded from duration accounting for chain violations",
			},
		)

		classifyErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "classify_errors_total",
				Help: "Parameters rendered DISCONNECTED because classification failed",
			},
		)

		activityTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "activity_transitions_total",
				Help: "Maintenance activity lifecycle transitions by kind",
			},
			[]string{"kind"},
		)

		sweepRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "condition_sweeps_total",
				Help: "Abnormal-condition sweep runs by result",
			},
			[]string{"result"},
		)
		sweepLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "condition_sweep_latency_seconds",
				Help:    "Abnormal-condition sweep latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		limitEdits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "limit_edits_total",
				Help: "Parameter limit edits by result",
			},
			[]string{"result"},
		)

		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Activity report exports by format",
			},
			[]string{"format"},
		)

		collectors := []prometheus.Collector{
			rollupRequests, rollupLatency,
			durationQueries, durationLatency, excludedSpans,
			classifyErrors,
			activityTransitions,
			sweepRuns, sweepLatency,
			limitEdits,
			exportsTotal,
		}
		for _, collector := range collectors {
			if err := prometheus.Register(collector); err != nil {
				if logger != nil {
					logger.Printf("metrics register error: %v", err)
				}
			}
		}

		if db != nil {
			registerDBGauges(db, logger)
		}
	})
}

func registerDBGauges(db *sql.DB, logger *log.Logger) {
	pendingGauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "pending_activities",
			Help: "Open maintenance activities",
		},
		func() float64 {
			var count int
			if err := db.QueryRow(`SELECT COUNT(*) FROM corrective_activities`).Scan(&count); err != nil {
				return 0
			}
			return float64(count)
		},
	)
	if err := prometheus.Register(pendingGauge); err != nil && logger != nil {
		logger.Printf("metrics register error: %v", err)
	}
}

// ObserveRollup records one rollup computation.
func ObserveRollup(err error, elapsed time.Duration) {
	if rollupRequests == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	rollupRequests.WithLabelValues(result).Inc()
	rollupLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveDurationQuery records one state duration computation.
func ObserveDurationQuery(err error, elapsed time.Duration) {
	if durationQueries == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	durationQueries.WithLabelValues(result).Inc()
	durationLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// AddExcludedSpans counts spans dropped for chain violations.
func AddExcludedSpans(n int) {
	if excludedSpans == nil || n <= 0 {
		return
	}
	excludedSpans.Add(float64(n))
}

// IncClassifyError counts a parameter that failed classification.
func IncClassifyError() {
	if classifyErrors == nil {
		return
	}
	classifyErrors.Inc()
}

// IncActivityTransition counts one lifecycle transition.
func IncActivityTransition(kind string) {
	if activityTransitions == nil {
		return
	}
	activityTransitions.WithLabelValues(kind).Inc()
}

// ObserveSweep records one abnormal-condition sweep.
func ObserveSweep(err error, elapsed time.Duration) {
	if sweepRuns == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	sweepRuns.WithLabelValues(result).Inc()
	sweepLatency.Observe(elapsed.Seconds())
}

// IncLimitEdit counts one limit edit attempt.
func IncLimitEdit(err error) {
	if limitEdits == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	limitEdits.WithLabelValues(result).Inc()
}

// IncExport counts one report export.
func IncExport(format string) {
	if exportsTotal == nil {
		return
	}
	exportsTotal.WithLabelValues(format).Inc()
}

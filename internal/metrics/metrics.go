// Package metrics exposes Prometheus collectors for calculations, storage and sync.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "housesplit"

// Calculation outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeUnknownMember  = "unknown_member"
	OutcomeUnknownFamily  = "unknown_family"
	OutcomeNoStays        = "no_stays"
	OutcomeNightsOverflow = "nights_overflow"
	OutcomeInternalError  = "internal_error"
	OutcomeStorageSuccess = "success"
	OutcomeStorageError   = "error"
)

type Metrics struct {
	calculations        *prometheus.CounterVec
	calculationDuration prometheus.Histogram
	settlements         prometheus.Histogram
	storageOps          *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	syncs               *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
}

// New registers the collectors with reg. Passing nil uses a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Calculation cycles by outcome.",
		}, []string{"outcome"}),
		calculationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent in a calculation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		settlements: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transfers",
			Help:      "Number of transfers produced per successful calculation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		storageOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Block store operations by backend, operation and outcome.",
		}, []string{"backend", "op", "outcome"}),
		storageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Block store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		syncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_syncs_total",
			Help:      "Snapshot syncs to Google Sheets by outcome.",
		}, []string{"outcome"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by hit or miss.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveCalculation(outcome string, d time.Duration, transfers int) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(outcome).Inc()
	m.calculationDuration.Observe(d.Seconds())
	if outcome == OutcomeOK {
		m.settlements.Observe(float64(transfers))
	}
}

func (m *Metrics) ObserveStorage(backend, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeStorageSuccess
	if err != nil {
		outcome = OutcomeStorageError
	}
	m.storageOps.WithLabelValues(backend, op, outcome).Inc()
	m.storageDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *Metrics) ObserveSync(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeStorageSuccess
	if err != nil {
		outcome = OutcomeStorageError
	}
	m.syncs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

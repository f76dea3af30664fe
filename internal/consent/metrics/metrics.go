package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Initialize outcomes.
const (
	OutcomeNoStorage = "no_storage"
	OutcomeAbsent    = "absent"
	OutcomeRestored  = "restored"
	OutcomeMalformed = "malformed"
	OutcomeReadError = "read_error"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	Initializations       *prometheus.CounterVec
	Commits               *prometheus.CounterVec
	CategoriesGranted     *prometheus.CounterVec
	StorageWriteFailures  prometheus.Counter
	StoreOperationLatency *prometheus.HistogramVec
	ActiveSessions        prometheus.Gauge
	ScriptsMounted        *prometheus.CounterVec
	BreakerState          *prometheus.GaugeVec
}

// New registers the consent collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Initializations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitekit_consent_initializations_total",
			Help: "Consent store hydrations, labeled by outcome",
		}, []string{"outcome"}),
		Commits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitekit_consent_commits_total",
			Help: "Committed consent choices, labeled by audit action",
		}, []string{"action"}),
		CategoriesGranted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitekit_consent_categories_granted_total",
			Help: "Optional categories enabled at commit time, labeled by category",
		}, []string{"category"}),
		StorageWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "sitekit_consent_storage_write_failures_total",
			Help: "Consent records that could not be persisted",
		}),
		StoreOperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitekit_consent_store_operation_latency_seconds",
			Help:    "Latency of consent storage reads and writes in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "sitekit_consent_active_sessions",
			Help: "Visitor consent sessions currently cached",
		}),
		ScriptsMounted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sitekit_scripts_mounted_total",
			Help: "Third-party scripts mounted after consent, labeled by script",
		}, []string{"script"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitekit_storage_circuit_open",
			Help: "1 while the storage circuit breaker is open",
		}, []string{"breaker"}),
	}
}

func (m *Metrics) IncrementInitialization(outcome string) {
	m.Initializations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCommit(action string) {
	m.Commits.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementCategoryGranted(category string) {
	m.CategoriesGranted.WithLabelValues(category).Inc()
}

func (m *Metrics) IncrementStorageWriteFailure() {
	m.StorageWriteFailures.Inc()
}

func (m *Metrics) ObserveStoreOperation(operation string, start time.Time) {
	m.StoreOperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) IncrementScriptMounted(script string) {
	m.ScriptsMounted.WithLabelValues(script).Inc()
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	RegistrationsTotal   prometheus.Counter
	RegistrationFailures *prometheus.CounterVec
	KYCVerdicts          *prometheus.CounterVec
	KYCWarnings          *prometheus.CounterVec
	LookupsTotal         prometheus.Counter
	AuthFailures         prometheus.Counter
	EndpointLatency      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_registrations_total",
			Help: "Total number of users registered",
		}),
		RegistrationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_registration_failures_total",
			Help: "Total number of failed registration attempts, labeled by reason",
		}, []string{"reason"}),
		KYCVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_verdicts_total",
			Help: "Total number of document validation verdicts, labeled by result",
		}, []string{"result"}),
		KYCWarnings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_kyc_warnings_total",
			Help: "Total number of document validation warnings, labeled by warning code",
		}, []string{"warning"}),
		LookupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_user_lookups_total",
			Help: "Total number of user record lookups",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementRegistrations increments the registrations counter by 1
func (m *Metrics) IncrementRegistrations() {
	m.RegistrationsTotal.Inc()
}

// IncrementRegistrationFailures increments the failure counter with a reason label
func (m *Metrics) IncrementRegistrationFailures(reason string) {
	m.RegistrationFailures.WithLabelValues(reason).Inc()
}

// ObserveVerdict records a document validation outcome
func (m *Metrics) ObserveVerdict(result string) {
	m.KYCVerdicts.WithLabelValues(result).Inc()
}

// ObserveWarning records a document validation warning
func (m *Metrics) ObserveWarning(warning string) {
	m.KYCWarnings.WithLabelValues(warning).Inc()
}

func (m *Metrics) IncrementLookups() {
	m.LookupsTotal.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

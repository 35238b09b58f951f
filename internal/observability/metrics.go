package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	casesRegisteredTotal *prometheus.CounterVec
	caseTransitionsTotal *prometheus.CounterVec
	storeWritesTotal     *prometheus.CounterVec
	storeWriteSeconds    prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the tracker.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aivt_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aivt_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		casesRegisteredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aivt_cases_registered_total",
			Help: "Cases inserted into the registry, by misconduct kind.",
		}, []string{"kind"})

		caseTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aivt_case_transitions_total",
			Help: "Status, penalty and removal operations applied to cases.",
		}, []string{"action"})

		storeWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aivt_store_writes_total",
			Help: "Full snapshot writes to the case store, by result.",
		}, []string{"result"})

		storeWriteSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aivt_store_write_seconds",
			Help:    "Duration of full snapshot writes to the case store.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			casesRegisteredTotal,
			caseTransitionsTotal,
			storeWritesTotal,
			storeWriteSeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// CasesRegistered exposes the case insertion counter.
func CasesRegistered() *prometheus.CounterVec {
	RegisterMetrics()
	return casesRegisteredTotal
}

// CaseTransitions exposes the case mutation counter.
func CaseTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return caseTransitionsTotal
}

// StoreWrites exposes the store write counter.
func StoreWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return storeWritesTotal
}

// StoreWriteDuration exposes the store write latency histogram.
func StoreWriteDuration() prometheus.Histogram {
	RegisterMetrics()
	return storeWriteSeconds
}

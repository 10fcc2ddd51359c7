package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	entries         prometheus.Counter
	exits           prometheus.Counter
	activeVisits    prometheus.Gauge
	storeFailures   prometheus.Counter
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visitor_access_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitor_access_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visitor_access_http_errors_total",
			Help: "Failed HTTP requests by route, method and error code.",
		}, []string{"path", "method", "code"}),
		entries: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitor_access_entries_total",
			Help: "Visits registered.",
		}),
		exits: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitor_access_exits_total",
			Help: "Visits closed with an exit.",
		}),
		activeVisits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "visitor_access_active_visits",
			Help: "Visitors currently on site.",
		}),
		storeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitor_access_store_write_failures_total",
			Help: "State writes rejected by the store.",
		}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordEntry counts a registered visit.
func (m *Metrics) RecordEntry() {
	if m == nil {
		return
	}
	m.entries.Inc()
}

// RecordExit counts a closed visit.
func (m *Metrics) RecordExit() {
	if m == nil {
		return
	}
	m.exits.Inc()
}

// SetActiveVisits publishes the number of open visits.
func (m *Metrics) SetActiveVisits(n int) {
	if m == nil {
		return
	}
	m.activeVisits.Set(float64(n))
}

// RecordStoreFailure counts a failed state write.
func (m *Metrics) RecordStoreFailure() {
	if m == nil {
		return
	}
	m.storeFailures.Inc()
}

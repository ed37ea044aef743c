package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "subscription_engine"

type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Business Metrics
	PaymentsInitiated          *prometheus.CounterVec
	GatewayRequests            *prometheus.CounterVec
	GatewayBreakerState        *prometheus.GaugeVec
	PollersActive              prometheus.Gauge
	PollTicks                  *prometheus.CounterVec
	TransactionsFinalized      *prometheus.CounterVec
	DecayItems                 *prometheus.CounterVec
	PersistenceInconsistencies prometheus.Counter
	SubscriptionChecks         *prometheus.CounterVec
	NotificationsPublished     *prometheus.CounterVec

	// Database Metrics
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBQueryDuration    *prometheus.HistogramVec
	DBQueriesTotal     *prometheus.CounterVec
	DBConnectionErrors prometheus.Counter

	// System Metrics
	ServiceUptime    prometheus.Gauge
	ServiceVersion   *prometheus.GaugeVec
	Goroutines       prometheus.Gauge
	MemoryUsageBytes *prometheus.GaugeVec
	PendingBacklog   prometheus.Gauge

	// Validation Metrics
	ValidationErrors *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		HTTPResponseSizeBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   []float64{100, 1000, 10_000, 100_000, 1_000_000},
			},
			[]string{"method", "path", "status_code"},
		),

		PaymentsInitiated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_initiated_total",
				Help:      "Total number of cash-in initiations",
			},
			[]string{"method", "result"},
		),
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_requests_total",
				Help:      "Total number of payment gateway calls",
			},
			[]string{"operation", "result"},
		),
		GatewayBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gateway_breaker_state",
				Help:      "Circuit breaker state per gateway (0 closed, 1 half-open, 2 open)",
			},
			[]string{"gateway"},
		),
		PollersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pollers_active",
				Help:      "Number of confirmation pollers currently running",
			},
		),
		PollTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_ticks_total",
				Help:      "Total number of confirmation poller ticks",
			},
			[]string{"outcome"},
		),
		TransactionsFinalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_finalized_total",
				Help:      "Total number of transactions that reached a terminal status",
			},
			[]string{"status"},
		),
		DecayItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decay_items_total",
				Help:      "Total number of entitlement decay items processed",
			},
			[]string{"result"},
		),
		PersistenceInconsistencies: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_inconsistencies_total",
				Help:      "Payments accepted by the gateway that could not be recorded locally",
			},
		),
		SubscriptionChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_checks_total",
				Help:      "Total number of subscription status checks",
			},
			[]string{"result"},
		),
		NotificationsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_published_total",
				Help:      "Total number of status notifications published",
			},
			[]string{"result"},
		),

		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_in_use",
				Help:      "Number of database connections currently in use",
			},
		),
		DBConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation", "table"},
		),
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table", "status"},
		),
		DBConnectionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_errors_total",
				Help:      "Total number of database connection errors",
			},
		),

		ServiceUptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_uptime_seconds",
				Help:      "Service uptime in seconds",
			},
		),
		ServiceVersion: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_version_info",
				Help:      "Service version information (labels: version, commit, build_date)",
			},
			[]string{"version", "commit", "build_date"},
		),
		Goroutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines",
				Help:      "Number of goroutines currently running",
			},
		),
		MemoryUsageBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "memory_usage_bytes",
				Help:      "Memory usage in bytes",
			},
			[]string{"type"},
		),
		PendingBacklog: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "transactions_pending",
				Help:      "Transactions still waiting for a terminal gateway event",
			},
		),

		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors",
			},
			[]string{"field", "tag"},
		),
	}
}

// --- Recording Methods ---

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
	m.HTTPResponseSizeBytes.WithLabelValues(method, path, statusCode).Observe(float64(responseSize))
}

func (m *Metrics) RecordPaymentInitiated(method, result string) {
	m.PaymentsInitiated.WithLabelValues(method, result).Inc()
}

func (m *Metrics) RecordGatewayRequest(operation string, err error) {
	m.GatewayRequests.WithLabelValues(operation, result(err)).Inc()
}

func (m *Metrics) SetBreakerState(gateway string, state float64) {
	m.GatewayBreakerState.WithLabelValues(gateway).Set(state)
}

func (m *Metrics) RecordPollTick(outcome string) {
	m.PollTicks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTransactionFinalized(status string) {
	m.TransactionsFinalized.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDecayItem(result string) {
	m.DecayItems.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordPersistenceInconsistency() {
	m.PersistenceInconsistencies.Inc()
}

func (m *Metrics) RecordSubscriptionCheck(active bool) {
	if active {
		m.SubscriptionChecks.WithLabelValues("active").Inc()
		return
	}
	m.SubscriptionChecks.WithLabelValues("inactive").Inc()
}

func (m *Metrics) RecordNotification(err error) {
	m.NotificationsPublished.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RecordDBQuery(operation, table, status string, duration time.Duration) {
	m.DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func (m *Metrics) RecordDBConnectionError() {
	m.DBConnectionErrors.Inc()
}

func (m *Metrics) RecordValidationError(field, tag string) {
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

// UpdateSystemMetrics updates system-level metrics (goroutines, uptime, memory).
func (m *Metrics) UpdateSystemMetrics(uptime time.Duration, memStats *runtime.MemStats) {
	m.ServiceUptime.Set(uptime.Seconds())
	m.Goroutines.Set(float64(runtime.NumGoroutine()))

	m.MemoryUsageBytes.WithLabelValues("alloc").Set(float64(memStats.Alloc))
	m.MemoryUsageBytes.WithLabelValues("total_alloc").Set(float64(memStats.TotalAlloc))
	m.MemoryUsageBytes.WithLabelValues("sys").Set(float64(memStats.Sys))
	m.MemoryUsageBytes.WithLabelValues("heap_alloc").Set(float64(memStats.HeapAlloc))
	m.MemoryUsageBytes.WithLabelValues("heap_sys").Set(float64(memStats.HeapSys))
}

func (m *Metrics) SetPendingBacklog(count int) {
	m.PendingBacklog.Set(float64(count))
}

// SetServiceVersion sets the service version information (only once per start).
func (m *Metrics) SetServiceVersion(version, commit, buildDate string) {
	m.ServiceVersion.WithLabelValues(version, commit, buildDate).Set(1)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

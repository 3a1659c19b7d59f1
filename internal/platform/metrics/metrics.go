package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	DBErrors         prometheus.Counter
	ExportsGenerated prometheus.Counter
	LoginsTotal      *prometheus.CounterVec
}

// New creates and registers all metrics against reg. main passes the default
// registerer; tests pass a fresh prometheus.NewRegistry so re-registration
// never panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de peticiones HTTP",
		}, []string{"method", "route", "status_code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP en segundos",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status_code"}),
		DBErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total de errores de conexión a base de datos",
		}),
		ExportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "exports_generated_total",
			Help: "Total de exportaciones Excel generadas",
		}),
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total de intentos de login por resultado",
		}, []string{"result"}),
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.RequestDuration.WithLabelValues(method, route, statusCode).Observe(duration.Seconds())
}

// IncDBError records a database connectivity failure.
func (m *Metrics) IncDBError() {
	if m == nil {
		return
	}
	m.DBErrors.Inc()
}

// IncExport records a generated spreadsheet.
func (m *Metrics) IncExport() {
	if m == nil {
		return
	}
	m.ExportsGenerated.Inc()
}

// IncLogin records a login attempt outcome ("ok" or "failed").
func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

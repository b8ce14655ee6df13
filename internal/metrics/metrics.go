// Package metrics defines Prometheus metrics for auditlens.
package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auditlens_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditlens_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditlens_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	DashboardDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auditlens_dashboard_duration_seconds",
			Help:    "Time to assemble a dashboard payload",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"dashboard"},
	)

	DashboardFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditlens_dashboard_failures_total",
			Help: "Dashboards that failed because a sub-query failed",
		},
		[]string{"dashboard"},
	)

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditlens_exports_total",
			Help: "Completed log exports by format",
		},
		[]string{"format"},
	)

	ExportedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auditlens_exported_records_total",
			Help: "Total activity log records written to exports",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auditlens_audit_queue_depth",
			Help: "Current export self-log queue depth",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		DashboardDuration, DashboardFailures,
		ExportsTotal, ExportedRecords, AuditQueueDepth,
	)
}

// RegisterPoolStats exposes connection pool gauges sampled on each scrape.
func RegisterPoolStats(stat func() *pgxpool.Stat) {
	gauge := func(name, help string, read func(*pgxpool.Stat) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return float64(read(stat())) },
		)
	}

	prometheus.MustRegister(
		gauge("auditlens_db_pool_total_conns", "Open database connections",
			func(s *pgxpool.Stat) int32 { return s.TotalConns() }),
		gauge("auditlens_db_pool_idle_conns", "Idle database connections",
			func(s *pgxpool.Stat) int32 { return s.IdleConns() }),
		gauge("auditlens_db_pool_acquired_conns", "Database connections in use",
			func(s *pgxpool.Stat) int32 { return s.AcquiredConns() }),
	)
}

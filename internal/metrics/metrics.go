// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation status labels
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scriptdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// PanicsTotal counts handler panics caught by the recovery middleware.
	PanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scriptdesk_http_panics_total",
			Help: "Handler panics recovered by the HTTP middleware",
		},
	)
	// OperationsTotal counts coordinator and audit operations.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptdesk_operations_total",
			Help: "Total number of folder, script and audit operations",
		},
		[]string{"operation", "status"},
	)
	// CascadeDeletedScripts counts scripts removed by folder and project deletes.
	CascadeDeletedScripts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scriptdesk_cascade_deleted_scripts_total",
			Help: "Scripts deleted as part of a folder or project cascade",
		},
	)
	// FolderCountDrift is the number of drifted folders found by the most recent audit.
	FolderCountDrift = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scriptdesk_folder_count_drift",
			Help: "Folders whose cached script count disagreed with the live count at the most recent audit",
		},
	)
)

// ObserveOperation records the outcome of a named operation
func ObserveOperation(operation string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
}

// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "driverpro"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "sessions_active", Help: "Number of live dashboard sessions",
	})
	BootstrapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "session_bootstraps_total", Help: "Session bootstraps by outcome"},
		[]string{"result"},
	)
	BootstrapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "session_bootstrap_seconds", Help: "Time from login to session ready",
		Buckets: prometheus.DefBuckets,
	})
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "identity_sign_ins_total", Help: "Identity sign-ins by provider and result"},
		[]string{"provider", "result"},
	)
	PreferenceSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "preference_saves_total", Help: "Settings saves by result"},
		[]string{"result"},
	)
)

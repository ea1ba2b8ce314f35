package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticket_platform"

var (
	// RemoteCalls 远端 JSON-RPC 调用次数, outcome: ok / transport / protocol / api_error
	RemoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Remote JSON-RPC calls by method and outcome.",
	}, []string{"method", "outcome"})

	RemoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Remote JSON-RPC call latency.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	}, []string{"method"})

	// CacheLookups 结果缓存命中情况, result: hit / miss
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by outcome.",
	}, []string{"result"})

	ServerFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "server_fetch_errors_total",
		Help:      "Per-server aggregation failures.",
	}, []string{"server"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "path", "status"})
)

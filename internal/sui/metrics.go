package sui

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction",
			Subsystem: "sui",
			Name:      "rpc_requests_total",
			Help:      "Total number of JSON-RPC calls to the full node",
		},
		[]string{"method", "outcome"},
	)

	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auction",
			Subsystem: "sui",
			Name:      "rpc_request_duration_seconds",
			Help:      "JSON-RPC call latency including rate limiter wait",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method"},
	)
)

func observeCall(method string, start time.Time, err error) {
	rpcRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	rpcRequestsTotal.WithLabelValues(method, outcome(err)).Inc()
}

func outcome(err error) string {
	var rpcErr *RPCError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnexpectedStatus):
		return "http_status"
	case errors.As(err, &rpcErr):
		return "rpc_error"
	default:
		return "error"
	}
}

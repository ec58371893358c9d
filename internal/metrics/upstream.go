package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(upstreamRequestsTotal, upstreamLatency, reauthTotal) }

var (
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Requests to the popodpiske API by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of requests to the popodpiske API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	reauthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_reauth_total",
			Help: "Token refresh attempts after 401 by outcome.",
		},
		[]string{"result"}, // refreshed | expired
	)
)

// ObserveUpstream учитывает запрос к основному API. code == 0 означает сетевую ошибку.
func ObserveUpstream(endpoint string, code int, took time.Duration) {
	c := "error"
	if code > 0 {
		c = strconv.Itoa(code)
	}
	upstreamRequestsTotal.WithLabelValues(norm(endpoint), c).Inc()
	upstreamLatency.WithLabelValues(norm(endpoint)).Observe(took.Seconds())
}

// IncReauth учитывает результат повторной авторизации.
func IncReauth(result string) {
	reauthTotal.WithLabelValues(norm(result)).Inc()
}

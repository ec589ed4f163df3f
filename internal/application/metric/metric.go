package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	chatCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_chat_commands_total",
			Help: "Chat commands handled, by platform and command",
		},
		[]string{"platform", "command"},
	)

	twitchReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitch_reconnects_total",
			Help: "Twitch chat transport reconnects after credential refresh",
		},
	)

	membershipSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twitch_membership_sync_duration_seconds",
			Help:    "Duration of a Twitch channel membership sync cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Active room update WebSocket connections",
		},
	)
)

// RecordHTTPMetrics records request count and duration for one HTTP request.
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func RecordChatCommand(platform, command string) {
	chatCommandsTotal.WithLabelValues(platform, command).Inc()
}

func IncTwitchReconnects() {
	twitchReconnectsTotal.Inc()
}

func ObserveMembershipSync(duration time.Duration) {
	membershipSyncDuration.Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

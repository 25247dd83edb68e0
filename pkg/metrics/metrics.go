package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Habit API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"endpoint", "status"},
	)

	ReminderReceivedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_received_count",
			Help: "Total number of reminder frames received on the push channel",
		},
		[]string{"frequency"},
	)

	ChannelReconnectCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channel_reconnect_count",
			Help: "Total number of push channel reconnect attempts",
		},
	)

	NotificationDeliveredCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivered_count",
			Help: "Total number of reminder notifications delivered",
		},
		[]string{"channel"}, // channel: toast, native
	)

	FrameDroppedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frame_dropped_count",
			Help: "Total number of inbound frames dropped",
		},
		[]string{"reason"}, // reason: malformed, unknown_type
	)
)

func RecordGatewayRequest(endpoint, status string, duration time.Duration) {
	GatewayRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

func IncrementReminderReceived(frequency string) {
	ReminderReceivedCount.WithLabelValues(frequency).Inc()
}

func IncrementChannelReconnect() {
	ChannelReconnectCount.Inc()
}

func IncrementNotificationDelivered(channel string) {
	NotificationDeliveredCount.WithLabelValues(channel).Inc()
}

func IncrementFrameDropped(reason string) {
	FrameDroppedCount.WithLabelValues(reason).Inc()
}

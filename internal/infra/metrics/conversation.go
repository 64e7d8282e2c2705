package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsActive,
		sessionsEvictedTotal,
		ordersPlacedTotal,
		supportMessagesTotal,
		validationRejectedTotal,
	)
}

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_sessions_active",
			Help: "Number of sessions currently held in the store.",
		},
	)

	sessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversation_sessions_evicted_total",
			Help: "Sessions removed by idle-expiry sweeps.",
		},
	)

	ordersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Completed order flows by payment method.",
		},
		[]string{"method"},
	)

	supportMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_messages_total",
			Help: "Support messages relayed to the operator.",
		},
	)

	validationRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_validation_rejected_total",
			Help: "Inputs rejected by step validation, by reason.",
		},
		[]string{"reason"},
	)
)

func SetActiveSessions(n int) {
	sessionsActive.Set(float64(n))
}

func AddEvictedSessions(n int) {
	sessionsEvictedTotal.Add(float64(n))
}

func IncOrderPlaced(method string) {
	ordersPlacedTotal.WithLabelValues(norm(method)).Inc()
}

func IncSupportMessage() {
	supportMessagesTotal.Inc()
}

func IncValidationRejected(reason string) {
	validationRejectedTotal.WithLabelValues(norm(reason)).Inc()
}

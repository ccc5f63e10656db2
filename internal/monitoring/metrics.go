package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_transitions_total",
			Help: "Controller events by outcome",
		},
		[]string{"event", "result"},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Credential gate submissions by mode and outcome",
		},
		[]string{"mode", "result"},
	)

	payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment overlay outcomes",
		},
		[]string{"outcome"},
	)

	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_ws_clients",
			Help: "Connected session websocket clients",
		},
	)
)

func TrackTransition(event, result string) {
	transitions.WithLabelValues(event, result).Inc()
}

func TrackAuth(mode, result string) {
	authAttempts.WithLabelValues(mode, result).Inc()
}

func TrackPayment(outcome string) {
	payments.WithLabelValues(outcome).Inc()
}

func SetWSClients(n int) {
	wsClients.Set(float64(n))
}

// Package metrics exposes Prometheus collectors for the game server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syndicate_active_rooms",
		Help: "Number of rooms currently held by the game store.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syndicate_active_connections",
		Help: "Number of live WebSocket connections.",
	})

	MessagesIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syndicate_messages_in_total",
		Help: "Inbound messages by action.",
	}, []string{"action"})

	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syndicate_delivery_failures_total",
		Help: "Outbound sends dropped because a recipient could not take the frame.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Currently open websocket connections",
	})
	wsCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_commands_total",
			Help: "Commands received over websocket, by type",
		},
		[]string{"type"},
	)
	wsBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_broadcasts_total",
		Help: "Session state updates fanned out to subscribers",
	})
	wsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_messages_total",
		Help: "Outbound messages dropped because a client's send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(wsConnections, wsCommands, wsBroadcasts, wsDropped)
}

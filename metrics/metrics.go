// Package metrics holds the prometheus collectors exported by the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	handshakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptochat_handshakes_total",
			Help: "Number of completed or failed key exchange steps",
		},
		[]string{"algorithm", "result"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptochat_messages_total",
			Help: "Number of relayed messages",
		},
		[]string{"algorithm", "result"},
	)
	connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cryptochat_connections_active",
			Help: "Number of open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(handshakes)
	prometheus.MustRegister(messages)
	prometheus.MustRegister(connections)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Handshake records a key exchange step for algorithm.
func Handshake(algorithm string, err error) {
	handshakes.With(prometheus.Labels{"algorithm": algorithm, "result": result(err)}).Inc()
}

// Message records a relayed message for algorithm.
func Message(algorithm string, err error) {
	messages.With(prometheus.Labels{"algorithm": algorithm, "result": result(err)}).Inc()
}

// ConnectionOpened increments the active connection gauge.
func ConnectionOpened() {
	connections.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func ConnectionClosed() {
	connections.Dec()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

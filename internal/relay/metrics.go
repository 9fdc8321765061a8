package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	peersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_peers_connected",
			Help: "Number of peers currently connected to the relay",
		},
	)

	framesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_relayed_total",
			Help: "Frames delivered to peer outboxes",
		},
		[]string{"type"},
	)

	framesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_frames_dropped_total",
			Help: "Frames dropped because a peer outbox was full",
		},
		[]string{"type"},
	)
)

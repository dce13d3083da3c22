// Package observability provides prometheus collectors and tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSockets is the gauge of currently open chat websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wtforum_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})

	// RoomMembers is the gauge of connections joined per topic room.
	RoomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wtforum_room_members",
		Help: "Number of WebSocket connections joined per topic room",
	}, []string{"topic_slug"})

	// MessagesPosted counts persisted-and-broadcast messages per topic and kind
	// (kind is "plain" or "bot").
	MessagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_messages_posted_total",
		Help: "Total number of messages persisted and broadcast",
	}, []string{"topic_slug", "kind"})

	// PostsDropped counts inbound post events that were dropped before broadcast.
	PostsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_posts_dropped_total",
		Help: "Total number of inbound post events dropped, by reason",
	}, []string{"reason"})

	// WebSocketEvents counts inbound WebSocket events by type.
	WebSocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// BackpressureDrops counts outbound payloads dropped because a client's
	// send buffer was full or closed.
	BackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket payloads dropped due to backpressure",
	}, []string{"reason"})

	// WeatherLookups counts bot weather lookups by outcome ("ok" or "failed").
	WeatherLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_weather_lookups_total",
		Help: "Total weather API lookups by outcome",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtforum_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

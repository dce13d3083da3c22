package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"wtforum/internal/chat"
	"wtforum/internal/middleware"
	"wtforum/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// clientEvent is an incoming websocket frame. Unknown or malformed frames are
// dropped without closing the connection.
type clientEvent struct {
	Event     string `json:"event"`
	TopicSlug string `json:"topic_slug"`
	Body      string `json:"body"`
	Author    string `json:"author"`
}

// WebSocketUpgrade gates the /ws group: plain HTTP requests get a 426.
func (s *Server) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketChatHandler handles WebSocket connections for real-time rooms.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		client := chat.NewClient(conn)
		client.OnDisconnect = func(c *chat.Client) {
			s.coordinator.HandleDisconnect(c)
		}
		client.IncomingHandler = func(c *chat.Client, frame []byte) {
			s.handleClientEvent(c, frame)
		}

		middleware.Logger.Info("websocket client connected",
			slog.String("client_id", client.ID()),
		)

		go client.WritePump()
		client.ReadPump()

		middleware.Logger.Info("websocket client disconnected",
			slog.String("client_id", client.ID()),
		)
	})
}

func (s *Server) handleClientEvent(client *chat.Client, frame []byte) {
	var event clientEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		observability.WebSocketEvents.WithLabelValues("malformed").Inc()
		return
	}
	if event.TopicSlug == "" {
		observability.WebSocketEvents.WithLabelValues("malformed").Inc()
		return
	}

	ctx := context.Background()

	switch event.Event {
	case "join":
		s.coordinator.HandleJoin(event.TopicSlug, client)

	case "leave":
		s.coordinator.HandleLeave(event.TopicSlug, client)

	case "message":
		allowed, err := middleware.CheckRateLimit(ctx, s.redis, "post_message", client.ID(), 30, time.Minute)
		if err != nil {
			// Rate limits fail open: an unavailable store throttles nothing.
			middleware.Logger.Warn("rate limit check failed, allowing post",
				slog.String("client_id", client.ID()),
				slog.String("error", err.Error()),
			)
			allowed = true
		}
		if !allowed {
			observability.PostsDropped.WithLabelValues("rate_limited").Inc()
			return
		}

		author := strings.TrimSpace(event.Author)
		if author == "" {
			author = "Гость"
		}

		// Pipeline errors are already logged and counted; one bad post
		// never tears down the connection.
		_, _ = s.coordinator.HandlePost(ctx, event.TopicSlug, event.Body, author)

	default:
		observability.WebSocketEvents.WithLabelValues("malformed").Inc()
	}
}

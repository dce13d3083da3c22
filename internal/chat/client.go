// Package chat holds the room registry, websocket client plumbing and the
// broadcast coordinator that ties posting, command interpretation and
// persistence together.
package chat

import (
	"log/slog"
	"time"

	"wtforum/internal/middleware"
	"wtforum/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16384
)

// Member is the capability a room holds for each participant: a stable
// identity plus best-effort delivery. The registry and coordinator only ever
// see this interface, never a websocket type.
type Member interface {
	ID() string
	TrySend(payload []byte)
}

// Client is the middleman between a websocket connection and the coordinator.
type Client struct {
	id   string
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// Callback for handling incoming frames.
	IncomingHandler func(*Client, []byte)

	// Invoked from the read pump defer; the coordinator hooks LeaveAll here.
	OnDisconnect func(*Client)
}

// NewClient creates a Client with a fresh connection identity.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// ID returns the connection's stable identity.
func (c *Client) ID() string { return c.id }

// ReadPump pumps frames from the websocket connection to the incoming handler.
func (c *Client) ReadPump() {
	defer func() {
		if c.OnDisconnect != nil {
			c.OnDisconnect(c)
		}
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("websocket read failed",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()),
				)
			}
			break
		}

		if c.IncomingHandler != nil {
			c.IncomingHandler(c, message)
		}
	}
}

// WritePump pumps messages from the Send channel to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend attempts to queue a message for the client. A full buffer drops the
// message rather than blocking the broadcasting goroutine; a closed channel is
// absorbed via recover so late fan-out after disconnect is harmless.
func (c *Client) TrySend(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.BackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- payload:
	default:
		observability.BackpressureDrops.WithLabelValues("full").Inc()
		middleware.Logger.Warn("send buffer full, dropped message",
			slog.String("client_id", c.id),
		)
	}
}

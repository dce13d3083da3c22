package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"wtforum/internal/bot"
	"wtforum/internal/middleware"
	"wtforum/internal/models"
	"wtforum/internal/observability"
	"wtforum/internal/repository"
)

// Interpreter rewrites a message body when it invokes a chat command.
// Satisfied by *bot.Interpreter.
type Interpreter interface {
	Interpret(ctx context.Context, body string) bot.CommandResult
}

// RoomEvent is the JSON frame fanned out to every member of a room.
type RoomEvent struct {
	Type      string          `json:"type"`
	TopicSlug string          `json:"topic_slug"`
	Message   *MessagePayload `json:"message,omitempty"`
}

// MessagePayload is the wire shape of a stored message.
type MessagePayload struct {
	ID        uint   `json:"id"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// Coordinator runs the posting pipeline: resolve the topic, interpret the
// body, persist, then fan out to the room. Persistence strictly precedes
// broadcast; a message that was not stored is never delivered.
type Coordinator struct {
	registry    *RoomRegistry
	topics      repository.TopicRepository
	messages    repository.MessageRepository
	interpreter Interpreter
	logger      *slog.Logger
}

func NewCoordinator(
	registry *RoomRegistry,
	topics repository.TopicRepository,
	messages repository.MessageRepository,
	interpreter Interpreter,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = middleware.Logger
	}
	return &Coordinator{
		registry:    registry,
		topics:      topics,
		messages:    messages,
		interpreter: interpreter,
		logger:      logger,
	}
}

// HandleJoin adds the member to the topic's room. Unknown slugs still get a
// room; history backfill is the HTTP layer's concern, not the registry's.
func (c *Coordinator) HandleJoin(topicSlug string, m Member) {
	c.registry.Join(topicSlug, m)
	observability.WebSocketEvents.WithLabelValues("join").Inc()
}

// HandleLeave removes the member from the topic's room.
func (c *Coordinator) HandleLeave(topicSlug string, m Member) {
	c.registry.Leave(topicSlug, m)
	observability.WebSocketEvents.WithLabelValues("leave").Inc()
}

// HandleDisconnect removes the member from every room it joined.
func (c *Coordinator) HandleDisconnect(m Member) {
	c.registry.LeaveAll(m)
	observability.WebSocketEvents.WithLabelValues("disconnect").Inc()
}

// HandlePost runs the full pipeline for one posted message. The returned
// message is the stored row; a nil message with a nil error means the post
// was silently dropped (unknown topic or empty body). A non-nil error means
// persistence failed and nothing was broadcast.
func (c *Coordinator) HandlePost(ctx context.Context, topicSlug, rawBody, author string) (*models.Message, error) {
	if strings.TrimSpace(rawBody) == "" {
		observability.PostsDropped.WithLabelValues("empty_body").Inc()
		return nil, nil
	}

	topic, err := c.topics.GetBySlug(ctx, topicSlug)
	if err != nil {
		if models.HasCode(err, models.ErrCodeNotFound) {
			observability.PostsDropped.WithLabelValues("unknown_topic").Inc()
			c.logger.Warn("post to unknown topic dropped",
				slog.String("topic_slug", topicSlug),
			)
			return nil, nil
		}
		observability.PostsDropped.WithLabelValues("storage").Inc()
		return nil, err
	}

	result := c.interpreter.Interpret(ctx, rawBody)

	msg, err := c.messages.Append(ctx, topic.ID, result.Body, author)
	if err != nil {
		observability.PostsDropped.WithLabelValues("storage").Inc()
		c.logger.Error("message append failed",
			slog.String("topic_slug", topicSlug),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	kind := "plain"
	if result.Substituted {
		kind = "bot"
	}
	observability.MessagesPosted.WithLabelValues(topicSlug, kind).Inc()

	c.broadcast(topicSlug, msg)
	return msg, nil
}

func (c *Coordinator) broadcast(topicSlug string, msg *models.Message) {
	event := RoomEvent{
		Type:      "message",
		TopicSlug: topicSlug,
		Message: &MessagePayload{
			ID:        msg.ID,
			Body:      msg.Body,
			Author:    msg.Author,
			CreatedAt: msg.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("room event marshal failed", slog.String("error", err.Error()))
		return
	}
	for _, m := range c.registry.Members(topicSlug) {
		m.TrySend(payload)
	}
}

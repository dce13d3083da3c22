package server

import (
	"wtforum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TopicDTO is the API response model for topic endpoints.
type TopicDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// MessageDTO is the API response model for message history.
type MessageDTO struct {
	ID        uint   `json:"id"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

const apiTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func toTopicDTO(t *models.Topic) TopicDTO {
	return TopicDTO{
		ID:          t.ID,
		Title:       t.Title,
		Slug:        t.Slug,
		Status:      t.Status,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(apiTimeFormat),
	}
}

func toMessageDTO(m *models.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Body:      m.Body,
		Author:    m.Author,
		CreatedAt: m.CreatedAt.UTC().Format(apiTimeFormat),
	}
}

func statusForError(err error) int {
	switch {
	case models.HasCode(err, models.ErrCodeNotFound):
		return fiber.StatusNotFound
	case models.HasCode(err, models.ErrCodeValidation):
		return fiber.StatusUnprocessableEntity
	case models.HasCode(err, models.ErrCodeStorageUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// GetTopics handles GET /api/topics and lists approved topics.
func (s *Server) GetTopics(c *fiber.Ctx) error {
	topics, err := s.topicService.ListApproved(c.Context())
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	resp := make([]TopicDTO, 0, len(topics))
	for _, topic := range topics {
		resp = append(resp, toTopicDTO(topic))
	}
	return c.JSON(resp)
}

// GetTopicBySlug handles GET /api/topics/:slug.
func (s *Server) GetTopicBySlug(c *fiber.Ctx) error {
	topic, err := s.topicService.GetApprovedBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(toTopicDTO(topic))
}

// GetTopicMessages handles GET /api/topics/:slug/messages. Clients call it
// after joining a room to backfill history; reconnects replay the same read.
func (s *Server) GetTopicMessages(c *fiber.Ctx) error {
	topicSlug := c.Params("slug")
	if _, err := s.topicService.GetApprovedBySlug(c.Context(), topicSlug); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	messages, err := s.messageRepo.ListByTopic(c.Context(), topicSlug)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	resp := make([]MessageDTO, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, toMessageDTO(msg))
	}
	return c.JSON(resp)
}

// ProposeTopicRequest is the request body for POST /api/topics.
type ProposeTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProposeTopic handles POST /api/topics. New topics start out pending and
// only become visible once a moderator approves them.
func (s *Server) ProposeTopic(c *fiber.Ctx) error {
	var req ProposeTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	topic, err := s.topicService.Propose(c.Context(), req.Title, req.Description)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTopicDTO(topic))
}

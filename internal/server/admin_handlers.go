package server

import (
	"wtforum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ModerateTopicsRequest is the request body for POST /api/admin/topics/:action.
type ModerateTopicsRequest struct {
	TopicIDs []uint `json:"topic_ids"`
}

// GetPendingTopics handles GET /api/admin/topics/pending.
func (s *Server) GetPendingTopics(c *fiber.Ctx) error {
	topics, err := s.topicService.ListPending(c.Context())
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	resp := make([]TopicDTO, 0, len(topics))
	for _, topic := range topics {
		resp = append(resp, toTopicDTO(topic))
	}
	return c.JSON(resp)
}

// ModerateTopics handles POST /api/admin/topics/:action where action is
// "approve" or "reject". The decision applies to every id in the batch.
func (s *Server) ModerateTopics(c *fiber.Ctx) error {
	var req ModerateTopicsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	if err := s.topicService.Moderate(c.Context(), req.TopicIDs, c.Params("action")); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"moderated": len(req.TopicIDs),
		"action":    c.Params("action"),
	})
}

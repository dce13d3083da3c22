// Package service contains the topic lifecycle logic sitting between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"strings"

	"wtforum/internal/cache"
	"wtforum/internal/models"
	"wtforum/internal/repository"

	"github.com/gosimple/slug"
)

// Moderation actions accepted by Moderate.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const maxTitleLength = 120

// TopicService owns topic proposal, moderation and listing.
type TopicService struct {
	topics repository.TopicRepository
}

// NewTopicService returns a new TopicService.
func NewTopicService(topics repository.TopicRepository) *TopicService {
	return &TopicService{topics: topics}
}

// Propose creates a topic in pending status. The slug is derived from the
// title; a duplicate slug surfaces as a validation error from the repository.
func (s *TopicService) Propose(ctx context.Context, title, description string) (*models.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, models.NewValidationError("title is too long")
	}

	topic := &models.Topic{
		Title:       title,
		Slug:        slug.Make(title),
		Status:      models.TopicStatusPending,
		Description: strings.TrimSpace(description),
	}
	if topic.Slug == "" {
		return nil, models.NewValidationError("title must contain sluggable characters")
	}

	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// ListApproved returns approved topics, oldest first, through the cache.
func (s *TopicService) ListApproved(ctx context.Context) ([]*models.Topic, error) {
	if topics, ok := cache.GetApprovedTopics(ctx); ok {
		return topics, nil
	}

	topics, err := s.topics.ListByStatus(ctx, models.TopicStatusApproved)
	if err != nil {
		return nil, err
	}
	cache.SetApprovedTopics(ctx, topics)
	return topics, nil
}

// ListPending returns topics awaiting moderation.
func (s *TopicService) ListPending(ctx context.Context) ([]*models.Topic, error) {
	return s.topics.ListByStatus(ctx, models.TopicStatusPending)
}

// GetApprovedBySlug resolves a slug to a topic and hides anything that has
// not been approved yet.
func (s *TopicService) GetApprovedBySlug(ctx context.Context, topicSlug string) (*models.Topic, error) {
	topic, err := s.topics.GetBySlug(ctx, topicSlug)
	if err != nil {
		return nil, err
	}
	if !topic.IsApproved() {
		return nil, models.NewNotFoundError("topic", topicSlug)
	}
	return topic, nil
}

// Moderate applies an approve or reject decision to a batch of topics and
// invalidates the approved-topics cache.
func (s *TopicService) Moderate(ctx context.Context, ids []uint, action string) error {
	var status string
	switch action {
	case ActionApprove:
		status = models.TopicStatusApproved
	case ActionReject:
		status = models.TopicStatusRejected
	default:
		return models.NewValidationError("unknown moderation action")
	}
	if len(ids) == 0 {
		return models.NewValidationError("topic_ids is required")
	}

	if err := s.topics.UpdateStatus(ctx, ids, status); err != nil {
		return err
	}
	cache.InvalidateApprovedTopics(ctx)
	return nil
}

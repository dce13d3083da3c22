package repository

import (
	"context"
	"errors"

	"wtforum/internal/models"

	"gorm.io/gorm"
)

// MessageRepository is the durable message store. Messages are append-only;
// there is no update or delete operation.
type MessageRepository interface {
	// Append persists a new message for an existing topic. The topic check and
	// the insert run in one transaction, so a partially written message is
	// never visible to readers and a message can never reference a missing
	// topic.
	Append(ctx context.Context, topicID uint, body, author string) (*models.Message, error)

	// ListByTopic returns every message of the topic identified by slug,
	// oldest first. Ties on the server-assigned timestamp are broken by ID,
	// which matches append order.
	ListByTopic(ctx context.Context, topicSlug string) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, topicID uint, body, author string) (*models.Message, error) {
	msg := &models.Message{
		TopicID: topicID,
		Body:    body,
		Author:  author,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.Select("id").First(&topic, topicID).Error; err != nil {
			return err
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("topic", topicID)
		}
		return nil, models.NewStorageError(err)
	}

	return msg, nil
}

func (r *messageRepository) ListByTopic(ctx context.Context, topicSlug string) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Joins("JOIN topics ON topics.id = messages.topic_id").
		Where("topics.slug = ?", topicSlug).
		Order("messages.created_at ASC, messages.id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return messages, nil
}

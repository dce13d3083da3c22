// Package repository provides data access over the relational store.
package repository

import (
	"context"
	"errors"

	"wtforum/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	GetBySlug(ctx context.Context, slug string) (*models.Topic, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Topic, error)
	UpdateStatus(ctx context.Context, ids []uint, status string) error
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	err := r.db.WithContext(ctx).Create(topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewValidationError("A topic with this slug already exists")
		}
		return models.NewStorageError(err)
	}
	return nil
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).First(&topic, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("topic", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &topic, nil
}

func (r *topicRepository) GetBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("topic", slug)
		}
		return nil, models.NewStorageError(err)
	}
	return &topic, nil
}

func (r *topicRepository) ListByStatus(ctx context.Context, status string) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&topics).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return topics, nil
}

func (r *topicRepository) UpdateStatus(ctx context.Context, ids []uint, status string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id IN ?", ids).
		Update("status", status).Error
	if err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic lifecycle statuses. A proposed topic starts as pending and is
// moved to approved or rejected by moderation.
const (
	TopicStatusPending  = "pending"
	TopicStatusApproved = "approved"
	TopicStatusRejected = "rejected"
)

// Topic represents a discussion topic. Each approved topic backs one chat room,
// addressed by its slug.
type Topic struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Status      string         `gorm:"not null;default:'pending';index" json:"status"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Messages    []Message      `gorm:"foreignKey:TopicID" json:"messages,omitempty"`
}

// IsApproved reports whether the topic has passed moderation.
func (t *Topic) IsApproved() bool {
	return t.Status == TopicStatusApproved
}

package models

import "time"

// Message represents a single chat message inside a topic room. Messages are
// append-only: there is no update or delete path, so no UpdatedAt/DeletedAt.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TopicID   uint      `gorm:"not null;index" json:"topic_id"`
	Topic     *Topic    `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Author    string    `gorm:"not null" json:"author"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

package seed

import (
	"testing"

	"wtforum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	require.NoError(t, db.AutoMigrate(&models.Topic{}, &models.Message{}))
	return db
}

func TestSeedTopicsAndMessages(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	topics, err := s.SeedTopics(Options{NumTopics: 10, LeavePendingEveryN: 5})
	require.NoError(t, err)
	require.Len(t, topics, 10)

	pending := 0
	for _, topic := range topics {
		assert.NotEmpty(t, topic.Slug)
		if !topic.IsApproved() {
			pending++
		}
	}
	assert.Equal(t, 2, pending, "every fifth topic stays pending")

	total, err := s.SeedMessages(topics, 5)
	require.NoError(t, err)
	assert.Positive(t, total)

	// Messages only land in approved topics.
	var count int64
	require.NoError(t, db.Model(&models.Message{}).
		Joins("JOIN topics ON topics.id = messages.topic_id").
		Where("topics.status != ?", models.TopicStatusApproved).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestClearAll(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	topics, err := s.SeedTopics(Options{NumTopics: 4})
	require.NoError(t, err)
	_, err = s.SeedMessages(topics, 3)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	var topicCount, msgCount int64
	require.NoError(t, db.Model(&models.Topic{}).Count(&topicCount).Error)
	require.NoError(t, db.Model(&models.Message{}).Count(&msgCount).Error)
	assert.Zero(t, topicCount)
	assert.Zero(t, msgCount)
}

package service

import (
	"context"
	"testing"

	"wtforum/internal/cache"
	"wtforum/internal/models"
	"wtforum/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*TopicService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	require.NoError(t, db.AutoMigrate(&models.Topic{}, &models.Message{}))

	// Tests run without redis unless they opt in via withCache.
	cache.SetClient(nil)

	return NewTopicService(repository.NewTopicRepository(db)), db
}

func withCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestPropose(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("creates pending topic with derived slug", func(t *testing.T) {
		topic, err := svc.Propose(ctx, "  Moscow Talks  ", "city chatter")
		require.NoError(t, err)
		assert.Equal(t, "Moscow Talks", topic.Title)
		assert.Equal(t, "moscow-talks", topic.Slug)
		assert.Equal(t, models.TopicStatusPending, topic.Status)
		assert.NotZero(t, topic.ID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := svc.Propose(ctx, "   ", "")
		assert.True(t, models.HasCode(err, models.ErrCodeValidation))
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		_, err := svc.Propose(ctx, "Moscow Talks", "")
		assert.True(t, models.HasCode(err, models.ErrCodeValidation))
	})
}

func TestModerate(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	first, err := svc.Propose(ctx, "First", "")
	require.NoError(t, err)
	second, err := svc.Propose(ctx, "Second", "")
	require.NoError(t, err)

	t.Run("approve", func(t *testing.T) {
		require.NoError(t, svc.Moderate(ctx, []uint{first.ID}, ActionApprove))
		var stored models.Topic
		require.NoError(t, db.First(&stored, first.ID).Error)
		assert.Equal(t, models.TopicStatusApproved, stored.Status)
	})

	t.Run("reject", func(t *testing.T) {
		require.NoError(t, svc.Moderate(ctx, []uint{second.ID}, ActionReject))
		var stored models.Topic
		require.NoError(t, db.First(&stored, second.ID).Error)
		assert.Equal(t, models.TopicStatusRejected, stored.Status)
	})

	t.Run("unknown action", func(t *testing.T) {
		err := svc.Moderate(ctx, []uint{first.ID}, "banish")
		assert.True(t, models.HasCode(err, models.ErrCodeValidation))
	})

	t.Run("empty ids", func(t *testing.T) {
		err := svc.Moderate(ctx, nil, ActionApprove)
		assert.True(t, models.HasCode(err, models.ErrCodeValidation))
	})
}

func TestListApproved_UsesCache(t *testing.T) {
	svc, db := setupService(t)
	withCache(t)
	ctx := context.Background()

	topic, err := svc.Propose(ctx, "Cached Topic", "")
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, []uint{topic.ID}, ActionApprove))

	first, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutating the table directly does not show through the warm cache.
	require.NoError(t, db.Model(&models.Topic{}).Where("id = ?", topic.ID).
		Update("title", "Renamed Behind The Cache").Error)

	cached, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "Cached Topic", cached[0].Title)

	// Moderation invalidates, so the next read sees fresh data.
	another, err := svc.Propose(ctx, "Another", "")
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, []uint{another.ID}, ActionApprove))

	fresh, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestGetApprovedBySlug(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	pending, err := svc.Propose(ctx, "Still Pending", "")
	require.NoError(t, err)

	t.Run("pending topic is hidden", func(t *testing.T) {
		_, err := svc.GetApprovedBySlug(ctx, pending.Slug)
		assert.True(t, models.HasCode(err, models.ErrCodeNotFound))
	})

	t.Run("approved topic resolves", func(t *testing.T) {
		require.NoError(t, svc.Moderate(ctx, []uint{pending.ID}, ActionApprove))
		topic, err := svc.GetApprovedBySlug(ctx, pending.Slug)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, topic.ID)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.GetApprovedBySlug(ctx, "nope")
		assert.True(t, models.HasCode(err, models.ErrCodeNotFound))
	})
}

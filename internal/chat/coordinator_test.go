package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"wtforum/internal/bot"
	"wtforum/internal/models"
	"wtforum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCoordinator(t *testing.T, interp Interpreter) (*Coordinator, *RoomRegistry, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	require.NoError(t, db.AutoMigrate(&models.Topic{}, &models.Message{}))

	if interp == nil {
		interp = bot.NewInterpreter(nil)
	}

	reg := NewRoomRegistry()
	coord := NewCoordinator(reg, repository.NewTopicRepository(db), repository.NewMessageRepository(db), interp, nil)
	return coord, reg, db
}

func createTopic(t *testing.T, db *gorm.DB, title, slug string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Title: title, Slug: slug, Status: models.TopicStatusApproved}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

type fixedInterpreter struct {
	result bot.CommandResult
}

func (f fixedInterpreter) Interpret(_ context.Context, _ string) bot.CommandResult {
	return f.result
}

func decodeEvent(t *testing.T, payload []byte) RoomEvent {
	t.Helper()
	var ev RoomEvent
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestHandlePost_BroadcastsToRoomMembersOnly(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)
	createTopic(t, db, "General", "general")
	createTopic(t, db, "Random", "random")

	alice := newFakeMember("alice")
	bob := newFakeMember("bob")
	carol := newFakeMember("carol")

	coord.HandleJoin("general", alice)
	coord.HandleJoin("general", bob)
	coord.HandleJoin("random", carol)

	msg, err := coord.HandlePost(context.Background(), "general", "hello room", "alice")
	require.NoError(t, err)
	require.NotNil(t, msg)

	for _, m := range []*fakeMember{alice, bob} {
		frames := m.Received()
		require.Len(t, frames, 1, "member %s", m.ID())
		ev := decodeEvent(t, frames[0])
		assert.Equal(t, "message", ev.Type)
		assert.Equal(t, "general", ev.TopicSlug)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "hello room", ev.Message.Body)
		assert.Equal(t, "alice", ev.Message.Author)
		assert.Equal(t, msg.ID, ev.Message.ID)
	}
	assert.Empty(t, carol.Received(), "other rooms must not receive the event")
}

func TestHandlePost_PersistsWithZeroMembers(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)
	topic := createTopic(t, db, "General", "general")

	msg, err := coord.HandlePost(context.Background(), "general", "nobody listening", "alice")
	require.NoError(t, err)
	require.NotNil(t, msg)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Where("topic_id = ?", topic.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandlePost_UnknownTopicIsSilentlyDropped(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)

	msg, err := coord.HandlePost(context.Background(), "no-such-topic", "hello", "alice")
	assert.NoError(t, err)
	assert.Nil(t, msg)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandlePost_EmptyBodyIsDropped(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)
	createTopic(t, db, "General", "general")

	alice := newFakeMember("alice")
	coord.HandleJoin("general", alice)

	for _, body := range []string{"", "   ", "\n\t"} {
		msg, err := coord.HandlePost(context.Background(), "general", body, "alice")
		assert.NoError(t, err)
		assert.Nil(t, msg)
	}

	assert.Empty(t, alice.Received())
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandlePost_StoresInterpretedBody(t *testing.T) {
	interp := fixedInterpreter{result: bot.CommandResult{
		Body:        "Бот. Город: Moscow. Страна: Russia. Местное время: 2024-01-01 10:00. Температура: 5℃. Погода: Cloudy. Ветер: 10 м.с.",
		Substituted: true,
	}}
	coord, _, db := setupCoordinator(t, interp)
	createTopic(t, db, "General", "general")

	alice := newFakeMember("alice")
	coord.HandleJoin("general", alice)

	msg, err := coord.HandlePost(context.Background(), "general", "Информация Москва", "alice")
	require.NoError(t, err)
	assert.Equal(t, interp.result.Body, msg.Body)

	frames := alice.Received()
	require.Len(t, frames, 1)
	ev := decodeEvent(t, frames[0])
	assert.Equal(t, interp.result.Body, ev.Message.Body)

	var stored models.Message
	require.NoError(t, db.First(&stored, msg.ID).Error)
	assert.Equal(t, interp.result.Body, stored.Body)
}

func TestHandlePost_AppendFailureAbortsBroadcast(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)
	createTopic(t, db, "General", "general")

	alice := newFakeMember("alice")
	coord.HandleJoin("general", alice)

	// Dropping the table makes every append fail at the storage layer.
	require.NoError(t, db.Migrator().DropTable(&models.Message{}))

	msg, err := coord.HandlePost(context.Background(), "general", "hello", "alice")
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, models.HasCode(err, models.ErrCodeStorageUnavailable))
	assert.Empty(t, alice.Received(), "failed append must not broadcast")
}

func TestHandleDisconnect_LeavesEveryRoom(t *testing.T) {
	coord, reg, db := setupCoordinator(t, nil)
	createTopic(t, db, "General", "general")
	createTopic(t, db, "Random", "random")

	alice := newFakeMember("alice")
	coord.HandleJoin("general", alice)
	coord.HandleJoin("random", alice)

	coord.HandleDisconnect(alice)

	_, err := coord.HandlePost(context.Background(), "general", "after disconnect", "bob")
	require.NoError(t, err)
	assert.Empty(t, alice.Received())
	assert.Equal(t, 0, reg.RoomCount())
}

func TestHandlePost_ConcurrentCrossTopicOrdering(t *testing.T) {
	coord, _, db := setupCoordinator(t, nil)
	general := createTopic(t, db, "General", "general")
	random := createTopic(t, db, "Random", "random")

	watcher := newFakeMember("watcher")
	coord.HandleJoin("general", watcher)

	const perTopic = 20
	var wg sync.WaitGroup
	for i := 0; i < perTopic; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, err := coord.HandlePost(context.Background(), "general", fmt.Sprintf("g-%d", n), "alice")
			assert.NoError(t, err)
		}(i)
		go func(n int) {
			defer wg.Done()
			_, err := coord.HandlePost(context.Background(), "random", fmt.Sprintf("r-%d", n), "bob")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every post landed in its own topic, none lost, none duplicated.
	for _, tc := range []struct {
		topicID uint
		prefix  string
	}{{general.ID, "g-"}, {random.ID, "r-"}} {
		var stored []models.Message
		require.NoError(t, db.Where("topic_id = ?", tc.topicID).
			Order("created_at ASC, id ASC").Find(&stored).Error)
		require.Len(t, stored, perTopic)
		seen := make(map[string]bool, perTopic)
		for _, m := range stored {
			assert.Contains(t, m.Body, tc.prefix)
			assert.False(t, seen[m.Body], "duplicate body %q", m.Body)
			seen[m.Body] = true
		}
	}

	// The watcher saw general's messages only.
	frames := watcher.Received()
	require.Len(t, frames, perTopic)
	for _, frame := range frames {
		ev := decodeEvent(t, frame)
		assert.Equal(t, "general", ev.TopicSlug)
		assert.Contains(t, ev.Message.Body, "g-")
	}
}

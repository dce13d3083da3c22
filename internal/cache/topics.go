package cache

import (
	"context"
	"encoding/json"
	"time"

	"wtforum/internal/models"
)

const (
	approvedTopicsKey = "topics:approved"
	approvedTopicsTTL = 2 * time.Minute
)

// GetApprovedTopics returns the cached approved-topic listing, or false when
// the cache is cold or Redis is unavailable.
func GetApprovedTopics(ctx context.Context) ([]*models.Topic, bool) {
	if client == nil {
		return nil, false
	}
	raw, err := client.Get(ctx, approvedTopicsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var topics []*models.Topic
	if err := json.Unmarshal(raw, &topics); err != nil {
		return nil, false
	}
	return topics, true
}

// SetApprovedTopics stores the approved-topic listing with a short TTL.
func SetApprovedTopics(ctx context.Context, topics []*models.Topic) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return
	}
	client.Set(ctx, approvedTopicsKey, raw, approvedTopicsTTL)
}

// InvalidateApprovedTopics drops the cached listing. Called after moderation
// changes a topic's status.
func InvalidateApprovedTopics(ctx context.Context) {
	if client != nil {
		client.Del(ctx, approvedTopicsKey)
	}
}

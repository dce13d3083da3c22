// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"wtforum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumTopics          int
	MessagesPerTopic   int
	ShouldClean        bool
	LeavePendingEveryN int
}

var topicTitles = []string{
	"General", "Movies", "Music", "Television", "Gaming",
	"Fitness", "Hobbies", "Sports", "Technology", "Weather",
	"Anime", "Books", "Food", "Travel", "Programming", "Linux",
	"Frontend", "Backend", "DevOps", "Cloud", "AI", "Startups",
	"Homelab", "Art", "History", "Philosophy", "Science",
}

// Seeder populates the database with realistic topics and message history.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes every seeded row. Messages go first to satisfy the
// foreign key.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().Delete(&models.Topic{}).Error; err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	return nil
}

// SeedTopics creates n topics. Every LeavePendingEveryN-th topic stays in the
// moderation queue so admin views have something to show.
func (s *Seeder) SeedTopics(opts Options) ([]*models.Topic, error) {
	n := opts.NumTopics
	if n <= 0 {
		n = 10
	}
	pendingEvery := opts.LeavePendingEveryN
	if pendingEvery <= 0 {
		pendingEvery = 5
	}

	topics := make([]*models.Topic, 0, n)
	for i := 0; i < n; i++ {
		title := s.topicTitle(i)
		status := models.TopicStatusApproved
		if (i+1)%pendingEvery == 0 {
			status = models.TopicStatusPending
		}

		topic := &models.Topic{
			Title:       title,
			Slug:        slug.Make(title),
			Status:      status,
			Description: gofakeit.Sentence(8),
		}
		if err := s.db.Create(topic).Error; err != nil {
			return nil, fmt.Errorf("create topic %q: %w", title, err)
		}
		topics = append(topics, topic)
	}
	log.Printf("Seeded %d topics", len(topics))
	return topics, nil
}

// SeedMessages fills each approved topic with chat history.
func (s *Seeder) SeedMessages(topics []*models.Topic, perTopic int) (int, error) {
	if perTopic <= 0 {
		perTopic = 20
	}

	total := 0
	for _, topic := range topics {
		if !topic.IsApproved() {
			continue
		}
		count := 1 + s.rng.Intn(perTopic)
		for i := 0; i < count; i++ {
			msg := &models.Message{
				TopicID: topic.ID,
				Body:    gofakeit.Sentence(4 + s.rng.Intn(12)),
				Author:  gofakeit.Username(),
			}
			if err := s.db.Create(msg).Error; err != nil {
				return total, fmt.Errorf("create message in %q: %w", topic.Slug, err)
			}
			total++
		}
	}
	log.Printf("Seeded %d messages", total)
	return total, nil
}

func (s *Seeder) topicTitle(i int) string {
	if i < len(topicTitles) {
		return topicTitles[i]
	}
	return fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun())
}

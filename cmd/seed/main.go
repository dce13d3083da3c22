// Command main runs the database seeder for WTForum.
package main

import (
	"flag"
	"log"

	"wtforum/internal/config"
	"wtforum/internal/database"
	"wtforum/internal/seed"
)

func main() {
	numTopics := flag.Int("topics", 15, "Number of topics to create")
	perTopic := flag.Int("messages", 20, "Max messages per approved topic")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d topics, up to %d messages each, clean=%v\n", *numTopics, *perTopic, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	topics, err := s.SeedTopics(seed.Options{NumTopics: *numTopics})
	if err != nil {
		log.Fatalf("Topic seeding failed: %v", err)
	}

	if _, err := s.SeedMessages(topics, *perTopic); err != nil {
		log.Fatalf("Message seeding failed: %v", err)
	}

	log.Println("All done! The forum is populated with test data.")
}

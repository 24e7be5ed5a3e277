// Command seed fills the configured database with demo data.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of users to create")
	numPosts := flag.Int("posts", 12, "Number of posts to create")
	numComments := flag.Int("comments", 3, "Comments per post")
	fixture := flag.String("fixture", "", "YAML fixture to load instead of generated data")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	s := seed.NewSeeder(db, *randSeed)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var res seed.Result
	if *fixture != "" {
		fx, err := seed.LoadFixtureFile(*fixture)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		res, err = s.ApplyFixture(fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		res, err = s.Generate(seed.Options{
			Users:           *numUsers,
			Posts:           *numPosts,
			CommentsPerPost: *numComments,
		})
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("All generated users have the password: %s", seed.DefaultPassword)
	}

	log.Printf("Seeded %d users, %d posts, %d comments", res.Users, res.Posts, res.Comments)
}

// Command main runs the database seeder for PuppyTalk.
package main

import (
	"context"
	"flag"
	"log"

	"puppytalk/internal/config"
	"puppytalk/internal/database"
	"puppytalk/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", "Seeder preset from presets.yml")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	randSeed := flag.Int64("rand", 0, "Fixed random seed for repeatable content")
	list := flag.Bool("list", false, "Print the available presets and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed a %s database", cfg.Env)
	}

	ctx := context.Background()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{BcryptCost: cfg.BcryptCost, RandSeed: *randSeed})
	if err != nil {
		log.Fatalf("Failed to build seeder: %v", err)
	}
	if *list {
		for _, name := range s.Catalog().Names() {
			p, _ := s.Catalog().Preset(name)
			log.Printf("%-6s users=%d posts/user=%d images/post=%d comments/post=%d like=%.2f",
				p.Name, p.Users, p.PostsPerUser, p.ImagesPerPost, p.CommentsPerPost, p.LikeChance)
		}
		return
	}

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.ApplyPreset(ctx, *preset)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d accounts, %d users, %d posts, %d images, %d comments, %d likes",
		sum.Accounts, sum.Users, sum.Posts, sum.Images, sum.Comments, sum.Likes)
	log.Printf("Every seeded user has the password %q", seed.DefaultPassword)
}

// Command seed fills the blog database with generated demo data.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"blogapi/internal/bootstrap"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/seed"
)

func main() {
	preset := flag.String("preset", "small", "built-in preset ("+strings.Join(seed.PresetNames(), ", ")+")")
	file := flag.String("file", "", "load the preset from a YAML file instead")
	numUsers := flag.Int("users", -1, "override the preset's user count")
	numPosts := flag.Int("posts", -1, "override the preset's posts per user")
	shouldClean := flag.Bool("clean", true, "clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "generate data without writing it")
	randSeed := flag.Int64("seed", 0, "random seed for reproducible output")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	var p seed.Preset
	if *file != "" {
		p, err = seed.LoadPresetFile(*file)
	} else {
		p, err = seed.LoadPreset(*preset)
	}
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}
	if *numUsers >= 0 {
		p.Users = *numUsers
	}
	if *numPosts >= 0 {
		p.PostsPerUser = *numPosts
	}

	// Flags decide what gets created, not SEED_PRESET.
	cfg.SeedPreset = ""
	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if *shouldClean && !*dryRun {
		if err := seed.Clean(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	s, err := seed.NewSeeder(db, p, seed.Options{DryRun: *dryRun, RandSeed: *randSeed})
	if err != nil {
		log.Fatalf("Invalid preset: %v", err)
	}
	summary, err := s.Seed(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %s", summary)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}

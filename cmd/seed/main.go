package main

import (
	"flag"
	"log/slog"
	"os"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/seed"
)

func main() {
	users := flag.Int("users", 25, "number of users to create")
	posts := flag.Int("posts", 4, "posts per user")
	clean := flag.Bool("clean", false, "wipe existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	opts := seed.Options{NumUsers: *users, PostsPerUser: *posts, ShouldClean: *clean}
	if err := seed.Run(db, opts); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("demo data ready", "password", seed.DemoPassword)
}

// Command admin grants or revokes the admin role for an account,
// looked up by email. Role changes take effect on the user's next
// request since the API re-reads the account per request.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/repository"
)

func main() {
	email := flag.String("email", "", "account email")
	revoke := flag.Bool("revoke", false, "revoke instead of grant")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	// Connect to the same Redis the API uses so SetAdmin's cache
	// invalidation reaches the server's user cache, not a local no-op.
	cache.InitRedis(cfg.RedisURL)

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	user, err := users.GetByEmail(ctx, *email)
	if err != nil || user == nil {
		slog.Error("account not found", "email", *email, "error", err)
		os.Exit(1)
	}

	if err := users.SetAdmin(ctx, user.ID, !*revoke); err != nil {
		slog.Error("failed to update role", "error", err)
		os.Exit(1)
	}
	slog.Info("role updated", "user_id", user.ID, "is_admin", !*revoke)
}

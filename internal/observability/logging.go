package observability

import (
	"log/slog"
	"os"

	"ripple/internal/middleware"
)

// SetupLogger installs the process-wide slog default: JSON in
// production, text locally. It reuses the context-aware handler from
// the middleware package so request and user IDs show up in log lines
// emitted anywhere below the HTTP layer.
func SetupLogger(env string) {
	if env == "production" || env == "prod" {
		middleware.Logger = middleware.NewContextLogger(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	slog.SetDefault(middleware.Logger)
}

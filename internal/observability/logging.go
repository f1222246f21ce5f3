package observability

import (
	"log/slog"
	"os"

	"storefront-api/internal/config"
)

func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", cfg.OTELServiceName, "env", cfg.Env)
	slog.SetDefault(logger)
	return logger
}

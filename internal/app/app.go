package app

import (
	"log/slog"
	"net/http"

	"storefront-api/internal/config"
	"storefront-api/internal/observability"
	"storefront-api/internal/service"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Janitor       *service.TokenJanitor
	Observability *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, janitor *service.TokenJanitor, runtime *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Janitor: janitor, Observability: runtime}
}

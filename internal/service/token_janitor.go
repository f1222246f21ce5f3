package service

import (
	"context"
	"log/slog"
	"time"

	"storefront-api/internal/repository"
)

// TokenJanitor periodically deletes refresh token rows whose expiry has
// passed. Expired rows are already unusable, this just keeps the table
// from growing without bound.
type TokenJanitor struct {
	tokens   repository.RefreshTokenRepository
	logger   *slog.Logger
	interval time.Duration
}

func NewTokenJanitor(tokens repository.RefreshTokenRepository, logger *slog.Logger, interval time.Duration) *TokenJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenJanitor{tokens: tokens, logger: logger, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *TokenJanitor) Run(ctx context.Context) {
	j.sweep()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *TokenJanitor) sweep() {
	deleted, err := j.tokens.DeleteExpired()
	if err != nil {
		j.logger.Error("expired token sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("expired refresh tokens deleted", "count", deleted)
	}
}

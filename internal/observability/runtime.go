package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront-api/internal/config"
)

// Runtime owns the telemetry pipeline for the process lifetime. The SDK
// providers register themselves globally during init; Runtime keeps only
// what Shutdown needs to flush them.
type Runtime struct {
	closers []func(context.Context) error
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init metrics pipeline: %w", err)
	}
	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing pipeline: %w", err)
	}
	return &Runtime{closers: []func(context.Context) error{mp.Shutdown, tp.Shutdown}}, nil
}

// Shutdown flushes buffered telemetry and stops every provider. All
// closers run even when an earlier one fails.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, closeFn := range r.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

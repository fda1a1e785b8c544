package cli

import (
	"context"
	"fmt"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/reconciler"
	"todo/internal/remote/dummyjson"
	"todo/internal/service"
	"todo/internal/store"
)

// NewService opens the task database named by cfg and wires the configured
// seed source into a reconciler.
func NewService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	source, err := NewSeedSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.DatabasePath()
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", service.ErrFetch, path, err)
	}
	return reconciler.New(st, source, cfg.Logger()), nil
}

// NewSeedSource returns the source used to fill an empty database, or nil
// when seeding is disabled.
func NewSeedSource(ctx context.Context, cfg *config.Config) (service.SeedSource, error) {
	if !cfg.Seed.Enabled {
		cfg.Logger().Print("seeding disabled")
		return nil, nil
	}

	switch cfg.Seed.Source {
	case config.SourceGoogleTasks:
		src, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceDummyJSON, "":
		return dummyjson.New(cfg.Seed.URL, nil, cfg.Logger()), nil
	default:
		return nil, fmt.Errorf("unknown seed source: %s", cfg.Seed.Source)
	}
}

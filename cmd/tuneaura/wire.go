package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/config"
	"github.com/justestif/go-tuneaura/internal/db"
	"github.com/justestif/go-tuneaura/internal/lastfm"
	"github.com/justestif/go-tuneaura/internal/spotify"
	"github.com/justestif/go-tuneaura/internal/store"
	"github.com/justestif/go-tuneaura/internal/web"
)

// openDatabase connects and migrates when the configuration uses PostgreSQL.
// It returns nil otherwise.
func openDatabase(ctx context.Context) (*db.DB, error) {
	if !cfg.NeedsDatabase() {
		return nil, nil
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// catalogSource builds the configured track source behind a cache.
func catalogSource(ctx context.Context, database *db.DB) (catalog.Source, error) {
	var src catalog.Source
	switch cfg.Catalog.Source {
	case config.CatalogSpotify:
		client, err := spotify.Connect(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger)
		if err != nil {
			return nil, err
		}
		src = client
	case config.CatalogLastfm:
		client, err := lastfm.NewClient(cfg.Lastfm.APIKey, logger)
		if err != nil {
			return nil, err
		}
		src = client
	case config.CatalogPostgres:
		src = database.CatalogSource()
	default:
		src = catalog.NewStatic(cfg.Catalog.PerGenre)
	}

	logger.Info("catalog ready", zap.String("source", cfg.Catalog.Source), zap.Duration("cache_ttl", cfg.Catalog.CacheTTL))
	if cfg.Catalog.CacheTTL <= 0 {
		return src, nil
	}
	return catalog.NewCached(src, cfg.Catalog.CacheTTL), nil
}

func catalogService(src catalog.Source) *catalog.Service {
	return catalog.NewService(src,
		catalog.WithConcurrency(cfg.Catalog.Concurrency),
		catalog.WithPerGenre(cfg.Catalog.PerGenre),
	)
}

// profileStores returns the per-profile store factory for the configured backend,
// plus a function releasing whatever the backend holds open.
func profileStores(database *db.DB) (web.StoreFactory, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.StoreFile:
		dir := filepath.Join(cfg.Store.DataDir, "profiles")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating profile dir: %w", err)
		}
		return func(id string) (store.Store, error) {
			return store.NewFile(filepath.Join(dir, id+".json")), nil
		}, noop, nil

	case config.StoreBadger:
		b, err := store.OpenBadger(filepath.Join(cfg.Store.DataDir, "badger"))
		if err != nil {
			return nil, nil, err
		}
		return func(id string) (store.Store, error) {
			return store.NewPrefixed(b, "profile/"+id), nil
		}, b.Close, nil

	case config.StorePostgres:
		return func(id string) (store.Store, error) {
			return database.ProfileStore(id), nil
		}, noop, nil

	default:
		return web.MemoryStores, noop, nil
	}
}

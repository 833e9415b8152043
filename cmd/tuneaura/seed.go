package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/config"
	"github.com/justestif/go-tuneaura/internal/db"
	"github.com/justestif/go-tuneaura/internal/lastfm"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/spotify"
)

var seedFrom string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import a track catalog into PostgreSQL",
	Long: `Import tracks for every mood genre into the tracks table, so the server can run
with the postgres catalog source. Tracks come from the built-in catalog, from
Spotify (needs SPOTIFY_ID and SPOTIFY_SECRET) or from Last.fm (needs LASTFM_API_KEY).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.DatabaseURL == "" {
			return errors.New("seed needs DATABASE_URL")
		}

		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}

		tracks, err := seedTracks(ctx)
		if err != nil {
			return err
		}
		if err := database.ImportTracks(ctx, tracks); err != nil {
			return err
		}

		count, err := database.Tracks().Count(ctx)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded", zap.String("from", seedFrom), zap.Int("imported", len(tracks)))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s tracks (%d in catalog)\n", countStyle.Render(fmt.Sprint(len(tracks))), count)
		return nil
	},
}

func seedTracks(ctx context.Context) ([]catalog.Track, error) {
	switch seedFrom {
	case config.CatalogStatic:
		return catalog.NewStatic(cfg.Catalog.PerGenre).AllTracks(ctx)
	case config.CatalogSpotify:
		client, err := spotify.Connect(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger)
		if err != nil {
			return nil, err
		}
		return allGenres(ctx, client)
	case config.CatalogLastfm:
		client, err := lastfm.NewClient(cfg.Lastfm.APIKey, logger)
		if err != nil {
			return nil, err
		}
		return allGenres(ctx, client)
	default:
		return nil, fmt.Errorf("unknown seed source %q (want static, spotify or lastfm)", seedFrom)
	}
}

// allGenres fetches every distinct genre once. Failed genres are logged and skipped.
func allGenres(ctx context.Context, src catalog.Source) ([]catalog.Track, error) {
	var out []catalog.Track
	seen := make(map[string]bool)
	for _, m := range mood.All() {
		for _, g := range m.Genres() {
			if seen[g] {
				continue
			}
			seen[g] = true

			tracks, err := src.TracksForGenre(ctx, g, cfg.Catalog.PerGenre)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("skipping genre", zap.String("genre", g), zap.Error(err))
				continue
			}
			out = append(out, tracks...)
		}
	}
	if len(out) == 0 {
		return nil, catalog.ErrNoTracks
	}
	return out, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFrom, "from", config.CatalogStatic, "Track source: static, spotify or lastfm")
}

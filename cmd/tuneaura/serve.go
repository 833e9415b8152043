package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/session"
	"github.com/justestif/go-tuneaura/internal/web"
	webfs "github.com/justestif/go-tuneaura/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web player",
	Long: `Run the web player. Each browser gets its own profile, identified by a
cookie, with state persisted in the configured store backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}

		src, err := catalogSource(ctx, database)
		if err != nil {
			return err
		}

		stores, closeStores, err := profileStores(database)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStores(); err != nil {
				logger.Warn("closing profile store", zap.Error(err))
			}
		}()

		templates, err := fs.Sub(webfs.TemplatesFS, "templates")
		if err != nil {
			return fmt.Errorf("creating templates filesystem: %w", err)
		}
		static, err := fs.Sub(webfs.StaticFS, "static")
		if err != nil {
			return fmt.Errorf("creating static filesystem: %w", err)
		}

		profiles := web.NewProfiles(web.ProfilesConfig{
			IdleTTL: cfg.Profiles.IdleTTL,
			Stores:  stores,
			Player: session.Config{
				DetectionDelay: cfg.Player.DetectionDelay,
				TrackDuration:  cfg.Player.TrackDuration,
				TickInterval:   cfg.Player.TickInterval,
			},
			CameraAllowed: cfg.Player.Camera,
			Logger:        logger,
		})

		mixes := catalog.DefaultMixConfig()
		mixes.NumMixes = cfg.Catalog.Mixes

		server, err := web.NewServer(web.ServerConfig{
			Addr:        cfg.Addr,
			TemplatesFS: templates,
			StaticFS:    static,
			Profiles:    profiles,
			Catalog:     catalogService(src),
			Mixes:       mixes,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		logger.Info("store backend", zap.String("backend", cfg.Store.Backend))
		return server.Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

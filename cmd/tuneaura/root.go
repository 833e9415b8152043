package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justestif/go-tuneaura/internal/config"
	"github.com/justestif/go-tuneaura/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tuneaura",
	Short: "Mood-driven music player",
	Long: `TuneAura picks music for how you feel.

Log in, tell it your mood (pick one, describe your day, or let the camera guess)
and it recommends tracks from the genres that fit.

Quick Start:
  tuneaura serve                       # Run the web player
  tuneaura resolve "long day at work"  # Resolve a mood from text
  tuneaura recommend calm --mixes      # Print recommendations and mood mixes`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}

		l, err := logging.New(logging.Options{Level: c.Log.Level, Dev: c.Log.Dev, File: c.Log.File})
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, resolveCmd, moodsCmd, recommendCmd, seedCmd)
}

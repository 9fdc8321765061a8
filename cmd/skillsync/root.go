package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/notepid/skillsync/internal/config"
	"github.com/notepid/skillsync/internal/logger"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	appLog *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skillsync",
	Short: "SkillSync discussion store, API and collaboration relay",
	Long: `SkillSync keeps a local copy of community discussions and their
messages, serves them over a small HTTP API, and relays collaboration
room edits between peers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		cfg = loaded
		appLog = logger.Setup(cfg.Log.Level, cfg.Log.JSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

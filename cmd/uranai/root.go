package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/uranai/internal/config"
	"github.com/aretw0/uranai/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uranai",
	Short: "uranai is a LINE bot that collects fortune-reading requests",
	Long: `uranai walks LINE users through a short intake dialogue (name, birth date, theme),
drafts a personalized reading with a language model and records it for operator review.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides $LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: auto, text, json (overrides $LOG_FORMAT)")
	rootCmd.PersistentFlags().String("kv-url", "", "Redis URL of the session store (overrides $KV_URL)")
}

// loadConfig resolves the configuration and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("kv-url") {
		cfg.Session.KVURL, _ = flags.GetString("kv-url")
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(level, format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

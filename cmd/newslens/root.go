package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is shared by the subcommands once the root pre-run has loaded it.
type app struct {
	v      *viper.Viper
	cfg    Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}
	var configPath string

	root := &cobra.Command{
		Use:           "newslens",
		Short:         "Topic-focused news relevance and sentiment analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := readConfigFile(a.v, configPath); err != nil {
				return err
			}
			cfg, err := loadConfig(a.v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			a.cfg, a.logger = cfg, logger
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("store", "none", "history store: none, json, sqlite or postgres")
	pf.String("store-dsn", "", "store file path or postgres connection string")
	bind(a.v, pf, map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"store.backend": "store",
		"store.dsn":     "store-dsn",
	})

	root.AddCommand(newAnalyzeCmd(a), newHistoryCmd(a))
	return root
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shutterbook/simulator/internal/core/config"
	"github.com/shutterbook/simulator/internal/core/db"
)

// Version is reported at startup.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

// rootFlagBindings maps config keys to the persistent flags that override them.
var rootFlagBindings = map[string]string{
	"database.url":   "db-url",
	"logging.level":  "log-level",
	"logging.format": "log-format",
}

var rootCmd = &cobra.Command{
	Use:           "shutterbook",
	Short:         "Shutterbook photo studio pricing simulator",
	Long:          `Shutterbook serves the customer price simulator and the admin form builder for photo studio shooting plans.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads config with cmd's flags layered on top.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	merged := make(map[string]string, len(rootFlagBindings)+len(bindings))
	for k, v := range rootFlagBindings {
		merged[k] = v
	}
	for k, v := range bindings {
		merged[k] = v
	}

	cfg, err := config.LoadConfig(configFile, cmd.Flags(), merged)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// initLogger builds the process logger: JSON lines or a console writer.
func initLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "shutterbook").Logger()
}

// openDatabase opens the configured database.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL required (--db-url or SB_DATABASE_URL)")
	}
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// requireMigrations refuses to run against a database with pending migrations.
func requireMigrations(ctx context.Context, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'shutterbook migrate up' first", s.ID)
		}
	}
	return nil
}

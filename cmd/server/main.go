package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rpggio/foreman/internal/config"
	"github.com/rpggio/foreman/internal/sqlite"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "foreman",
		Short:         "Construction and research scheduler for the simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// .env is optional.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $FOREMAN_CONFIG_PATH)")

	load := func() (config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCommand(load))
	root.AddCommand(newMigrateCommand(load))
	root.AddCommand(newPlayerCommand(load))
	root.AddCommand(newAPIKeyCommand(load))
	return root
}

type configLoader func() (config.Config, error)

// openDB opens the database and applies migrations.
func openDB(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

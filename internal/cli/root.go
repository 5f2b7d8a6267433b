package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/tempo/internal/config"
	"github.com/terraincognita07/tempo/internal/db"
	"gorm.io/gorm"
)

func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tempo",
		Short: "Tempo - projects, tasks and time tracking",
		Long: `Tempo serves a JSON API for hierarchical projects, kanban tasks,
time tracking and quick links, and ships the maintenance commands
needed to run it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: tempo.yaml)")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newMigrateCommand(&configPath))
	rootCmd.AddCommand(newResetPasswordCommand(&configPath))
	rootCmd.AddCommand(newCreateAdminCommand(&configPath))

	return rootCmd
}

// openDatabase loads only the database section of the config, so the
// maintenance commands work without a server secret.
func openDatabase(configPath string) (*gorm.DB, error) {
	cfg, err := config.DatabaseOnly(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package main

import (
	"github.com/dataservice/chat2query/internal/config"
	"github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/pkg/log"
	"github.com/dataservice/chat2query/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use: "chat2query-api",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
}

// setup reads the environment, installs the global logger and opens the
// database with an up to date schema.
func setup() (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, func() {}, err
	}

	undo := log.Setup(cfg.Service.LogLevel)

	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		return nil, nil, undo, err
	}

	if err := migrations.MigrateStore(db, cfg.Database.Type, cfg.Service.MigrationFolder); err != nil {
		return nil, nil, undo, err
	}

	return cfg, db, undo, nil
}

package main

import (
	"fmt"

	"github.com/dataservice/chat2query/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, undo, err := setup()
		defer undo()
		if err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		store := store.NewStore(db)
		defer store.Close()

		zap.S().Info("Db migrated")
		return nil
	},
}

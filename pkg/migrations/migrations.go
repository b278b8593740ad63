package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql
var embedded embed.FS

// MigrateStore applies every pending migration. Migrations are read from
// migrationFolder when set, otherwise from the files shipped in the binary
// for the given database type ("pgsql" or "sqlite").
func MigrateStore(db *gorm.DB, dbType, migrationFolder string) error {
	goose.SetLogger(&logger{})

	dialect, dir := dialectFor(dbType)

	if migrationFolder != "" {
		fi, err := os.Stat(migrationFolder)
		if err != nil {
			return err
		}

		if !fi.Mode().IsDir() {
			return fmt.Errorf("failed to open migration folder: %s is not a folder", migrationFolder)
		}

		goose.SetBaseFS(os.DirFS(migrationFolder))
		dir = "."
	} else {
		sub, err := fs.Sub(embedded, "sql")
		if err != nil {
			return err
		}
		goose.SetBaseFS(sub)
	}

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return goose.Up(sqlDB, dir)
}

func dialectFor(dbType string) (dialect, dir string) {
	if dbType == "pgsql" {
		return "postgres", "postgres"
	}
	return "sqlite3", "sqlite"
}

/*
logger implements goose.Logger interface

	type Logger interface {
		Fatalf(format string, v ...interface{})
		Printf(format string, v ...interface{})
	}
*/
type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) { zap.S().Named("migrations").Infof(format, v...) }
func (m *logger) Fatalf(format string, v ...interface{}) { zap.S().Named("migrations").Fatalf(format, v...) }

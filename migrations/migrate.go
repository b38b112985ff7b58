package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// Migrate brings the schema up to date. The dialect selects both the goose
// dialect and the migration set: "pgx" for postgres, "sqlite3" for sqlite.
func Migrate(db *sql.DB, dialect string) error {
	dir := "postgres"
	if dialect == "sqlite3" {
		dir = "sqlite"
	}

	sub, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("migration error selecting migration set: %w", err)
	}
	goose.SetBaseFS(sub)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

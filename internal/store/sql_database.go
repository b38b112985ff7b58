// Package store implements the server's persistence layer on database/sql.
//
// Two drivers are supported and selected by DSN scheme: postgres via the pgx
// stdlib driver and sqlite via mattn/go-sqlite3. Queries are built with
// squirrel so the placeholder format follows the driver. Row identifiers for
// conversations and messages are application-generated UUIDs, which keeps
// the SQL portable across both drivers.
package store

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/migrations"
)

type DB struct {
	*sql.DB
	builder            sq.StatementBuilderType
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Connect opens the database named by the DSN, picking the driver from the
// scheme: postgres:// or postgresql:// for pgx, anything else is treated as
// a sqlite file path.
func Connect(ctx context.Context, cfg config.ServerStorage, log *logger.Logger) (*DB, error) {
	if isPostgresDSN(cfg.DB.DSN) {
		return NewConnectPostgres(ctx, cfg.DB, log)
	}
	return NewConnectSQLite(ctx, cfg.DB, log)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

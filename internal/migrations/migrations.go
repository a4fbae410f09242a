// Package migrations embeds the goose SQL migrations of both stores and
// applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed local/*.sql remote/*.sql
var files embed.FS

// Goose dialect names.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
	DialectPgx      = "pgx"
)

// goose keeps base FS and dialect in package globals.
var mu sync.Mutex

var gooseUpContext = goose.UpContext

// Local returns the migrations of the device-local store.
func Local() fs.FS {
	sub, _ := fs.Sub(files, "local")
	return sub
}

// Remote returns the migrations of the shared remote store.
func Remote() fs.FS {
	sub, _ := fs.Sub(files, "remote")
	return sub
}

// UpLocal applies the local migrations to a SQLite database.
func UpLocal(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, Local(), DialectSQLite)
}

// UpRemote applies the remote migrations to a PostgreSQL database.
func UpRemote(ctx context.Context, db *sql.DB, dialect string) error {
	return up(ctx, db, Remote(), dialect)
}

func up(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

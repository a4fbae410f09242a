package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/migrations"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

var _ LocalManager = (*SQLiteRepositoryManager)(nil)

func (m *SQLiteRepositoryManager) Entries(db dbx.DBTX) entries.Local {
	return entries.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Tags(db dbx.DBTX) tags.Local {
	return tags.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Settings(db dbx.DBTX) settings.Store {
	return settings.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.UpLocal(ctx, db)
}

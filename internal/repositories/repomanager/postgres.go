package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/migrations"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Dialect is
// the goose dialect matching the database/sql driver in use.
type PostgresRepositoryManager struct {
	dialect string
}

// NewPostgresRepositoryManager defaults to the pgx dialect.
func NewPostgresRepositoryManager(dialect string) *PostgresRepositoryManager {
	if dialect == "" {
		dialect = migrations.DialectPgx
	}
	return &PostgresRepositoryManager{dialect: dialect}
}

var _ RemoteManager = (*PostgresRepositoryManager)(nil)

func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Remote {
	return entries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tags(db dbx.DBTX) tags.Remote {
	return tags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Store {
	return settings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.UpRemote(ctx, db, m.dialect)
}

// Package storage opens the two stores: the always-available local SQLite
// file and the optional remote PostgreSQL database.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/filex"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory local store.
const MemoryPath = ":memory:"

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Local is the migrated device store.
type Local struct {
	DB      *sql.DB
	Manager repomanager.LocalManager
}

// OpenLocal opens and migrates the SQLite file at path. Any failure is
// reported as common.ErrLocalStoreUnavailable.
func OpenLocal(ctx context.Context, path string) (*Local, error) {
	dsn := path
	if path != MemoryPath {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrLocalStoreUnavailable, err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlOpen("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrLocalStoreUnavailable, err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	m := repomanager.NewSQLiteRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrLocalStoreUnavailable, err)
	}

	return &Local{DB: db, Manager: m}, nil
}

func (l *Local) Entries() entries.Local { return l.Manager.Entries(l.DB) }

func (l *Local) Tags() tags.Local { return l.Manager.Tags(l.DB) }

func (l *Local) Settings() settings.Store { return l.Manager.Settings(l.DB) }

func (l *Local) Close() error {
	return l.DB.Close()
}

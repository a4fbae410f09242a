// Package repomanager vends the repositories of one store bound to a DBTX,
// so services can run them on a *sql.DB or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
)

// LocalManager builds device-store repositories.
type LocalManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Local
	Tags(db dbx.DBTX) tags.Local
	Settings(db dbx.DBTX) settings.Store
}

// RemoteManager builds shared-store repositories.
type RemoteManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Remote
	Tags(db dbx.DBTX) tags.Remote
	Settings(db dbx.DBTX) settings.Store
}

// Package dbx is the database/sql glue the clipboard repositories share.
// Local SQLite stores and the remote PostgreSQL store both go through it.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX lets a repository run against either a pool or an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction on db. The transaction is committed
// when fn returns nil; an error or a panic from fn rolls it back, and the
// panic is raised again afterwards.
//
// Deleting a tag strips it from entries and drops the row in one go:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := s.retag(ctx, tx, tenantID, tag.Name, ""); err != nil {
//	        return err
//	    }
//	    return tags.NewSQLiteRepository(tx).DeleteByID(ctx, tenantID, tag.ID)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

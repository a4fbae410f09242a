package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// SQLiteRepository implements Local over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Local = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	now := time.Now().UTC()
	query := `INSERT INTO tags (tenant_id, name, name_key, color, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, 'local')`
	res, err := r.db.ExecContext(ctx, query, t.TenantID, t.Name, dbx.Fold(t.Name), t.Color, now, now)
	if dbx.IsUniqueViolation(err) {
		return nil, common.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return r.GetByID(ctx, t.TenantID, id)
}

func (r *SQLiteRepository) List(ctx context.Context, tenantID string) ([]*models.Tag, error) {
	query := `SELECT ` + localColumns + ` FROM tags WHERE tenant_id = ? ORDER BY name_key, id`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	return collect(rows, scanLocal)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Tag, error) {
	return r.one(ctx, `SELECT `+localColumns+` FROM tags WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

// GetByName matches on name_key, the Unicode-folded name kept next to name.
func (r *SQLiteRepository) GetByName(ctx context.Context, tenantID, name string) (*models.Tag, error) {
	return r.one(ctx, `SELECT `+localColumns+` FROM tags WHERE tenant_id = ? AND name_key = ?`, tenantID, dbx.Fold(name))
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, tenantID string, serverID int64) (*models.Tag, error) {
	return r.one(ctx, `SELECT `+localColumns+` FROM tags WHERE tenant_id = ? AND server_id = ? ORDER BY id LIMIT 1`, tenantID, serverID)
}

func (r *SQLiteRepository) one(ctx context.Context, query string, args ...any) (*models.Tag, error) {
	t, err := scanLocal(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

// Update changes name and color and resets the marker to local.
func (r *SQLiteRepository) Update(ctx context.Context, tenantID string, id int64, name, color string) (*models.Tag, error) {
	query := `UPDATE tags SET name = ?, name_key = ?, color = ?, updated_at = ?, sync_status = 'local'
		WHERE tenant_id = ? AND id = ?`
	if err := r.execOne(ctx, query, name, dbx.Fold(name), color, time.Now().UTC(), tenantID, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM tags WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if dbx.IsUniqueViolation(err) {
		return common.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context, tenantID string, limit int) ([]*models.Tag, error) {
	if limit <= 0 {
		limit = DefaultUnsyncedLimit
	}
	query := `SELECT ` + localColumns + ` FROM tags WHERE tenant_id = ? AND sync_status = 'local' ORDER BY id ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced tags: %w", err)
	}
	return collect(rows, scanLocal)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, pushed *models.Tag, serverID int64) error {
	query := `UPDATE tags SET sync_status = 'synced', server_id = ?
		WHERE id = ? AND tenant_id = ? AND name = ? AND color = ?`
	res, err := r.db.ExecContext(ctx, query, serverID, pushed.ID, pushed.TenantID, pushed.Name, pushed.Color)
	if err != nil {
		return fmt.Errorf("failed to mark tag synced: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return ErrModifiedDuringPush
	}
	return nil
}

func (r *SQLiteRepository) UpsertFromRemote(ctx context.Context, remote *models.Tag) (UpsertResult, error) {
	existing, err := r.GetByServerID(ctx, remote.TenantID, remote.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return UpsertUnchanged, err
	}
	if existing == nil {
		existing, err = r.GetByName(ctx, remote.TenantID, remote.Name)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return UpsertUnchanged, err
		}
	}

	if existing == nil {
		query := `INSERT INTO tags (tenant_id, name, name_key, color, created_at, updated_at, sync_status, server_id)
			VALUES (?, ?, ?, ?, ?, ?, 'synced', ?)`
		_, err := r.db.ExecContext(ctx, query, remote.TenantID, remote.Name, dbx.Fold(remote.Name), remote.Color,
			remote.CreatedAt.UTC(), remote.UpdatedAt.UTC(), remote.ID)
		if dbx.IsUniqueViolation(err) {
			return UpsertUnchanged, common.ErrDuplicate
		}
		if err != nil {
			return UpsertUnchanged, fmt.Errorf("failed to insert remote tag: %w", err)
		}
		return UpsertInserted, nil
	}

	if existing.SyncStatus == models.SyncStatusSynced && existing.ServerID != nil && *existing.ServerID == remote.ID &&
		existing.Name == remote.Name && existing.Color == remote.Color {
		return UpsertUnchanged, nil
	}

	query := `UPDATE tags SET name = ?, name_key = ?, color = ?, updated_at = ?, sync_status = 'synced', server_id = ?
		WHERE tenant_id = ? AND id = ?`
	if err := r.execOne(ctx, query, remote.Name, dbx.Fold(remote.Name), remote.Color, remote.UpdatedAt.UTC(), remote.ID,
		remote.TenantID, existing.ID); err != nil {
		return UpsertUnchanged, err
	}
	return UpsertUpdated, nil
}

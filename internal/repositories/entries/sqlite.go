package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/identity"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// SQLiteRepository implements Local using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Local = (*SQLiteRepository)(nil)

// Insert stores e with marker local. Duplicate hashes return common.ErrDuplicate.
func (r *SQLiteRepository) Insert(ctx context.Context, e *models.ClipboardEntry) (*models.ClipboardEntry, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query := `INSERT INTO clipboard_entries (tenant_id, content, content_type, content_hash, source_app,
			source_window, timestamp, created_at, tags, is_pinned, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'local')
		ON CONFLICT(content_hash) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		e.TenantID, e.Content, string(e.ContentType), e.ContentHash, e.SourceApp, e.SourceWindow,
		e.Timestamp.UTC(), createdAt.UTC(), tagsValue(e.Tags), e.IsPinned)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return nil, common.ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return r.GetByID(ctx, e.TenantID, id)
}

// List returns the newest entries of a tenant.
func (r *SQLiteRepository) List(ctx context.Context, tenantID string, limit int) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries
		WHERE tenant_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limitOr(limit, DefaultListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	return collect(rows, scanLocal)
}

// GetByID returns a single entry of the tenant.
func (r *SQLiteRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries WHERE tenant_id = ? AND id = ?`
	return r.one(ctx, query, tenantID, id)
}

// GetByServerID returns the entry mapped to a remote identifier.
func (r *SQLiteRepository) GetByServerID(ctx context.Context, tenantID string, serverID int64) (*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries WHERE tenant_id = ? AND server_id = ?
		ORDER BY id LIMIT 1`
	return r.one(ctx, query, tenantID, serverID)
}

func (r *SQLiteRepository) getByHash(ctx context.Context, hash string) (*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries WHERE content_hash = ?`
	return r.one(ctx, query, hash)
}

func (r *SQLiteRepository) one(ctx context.Context, query string, args ...any) (*models.ClipboardEntry, error) {
	e, err := scanLocal(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

// Search matches content case-insensitively. Both sides go through fold,
// since LIKE on its own only ignores ASCII case.
func (r *SQLiteRepository) Search(ctx context.Context, tenantID, q string, limit int) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries
		WHERE tenant_id = ? AND fold(content) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, tenantID, containsPattern(dbx.Fold(q)), limitOr(limit, DefaultListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return collect(rows, scanLocal)
}

// ListTagged returns entries of the tenant carrying name, ignoring case.
func (r *SQLiteRepository) ListTagged(ctx context.Context, tenantID, name string) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries
		WHERE tenant_id = ? AND tags IS NOT NULL
			AND EXISTS (SELECT 1 FROM json_each(clipboard_entries.tags) WHERE fold(json_each.value) = ?)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantID, dbx.Fold(name))
	if err != nil {
		return nil, fmt.Errorf("failed to select tagged entries: %w", err)
	}
	return collect(rows, scanLocal)
}

// Update applies patch and resets the marker to local.
func (r *SQLiteRepository) Update(ctx context.Context, tenantID string, id int64, patch models.EntryPatch) (*models.ClipboardEntry, error) {
	sets := []string{"sync_status = 'local'"}
	var args []any
	if patch.IsPinned != nil {
		sets = append(sets, "is_pinned = ?")
		args = append(args, *patch.IsPinned)
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, tagsValue(*patch.Tags))
	}
	args = append(args, tenantID, id)

	query := `UPDATE clipboard_entries SET ` + strings.Join(sets, ", ") + ` WHERE tenant_id = ? AND id = ?`
	if err := r.execOne(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

// UpdateContent replaces content, recomputes hash and type and resets the marker.
func (r *SQLiteRepository) UpdateContent(ctx context.Context, tenantID string, id int64, content string) (*models.ClipboardEntry, error) {
	ident := identity.Identify(content)
	query := `UPDATE clipboard_entries SET content = ?, content_hash = ?, content_type = ?, sync_status = 'local'
		WHERE tenant_id = ? AND id = ?`
	if err := r.execOne(ctx, query, content, ident.Hash, string(ident.ContentType), tenantID, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

// DeleteByID removes the entry. The remote row, if any, is left alone.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM clipboard_entries WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

// execOne runs a single-row mutation and maps zero rows to ErrorNotFound.
func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if dbx.IsUniqueViolation(err) {
		return common.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
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

// Purge deletes unpinned entries selected by f.
func (r *SQLiteRepository) Purge(ctx context.Context, tenantID string, f PurgeFilter) (int64, error) {
	query := `DELETE FROM clipboard_entries WHERE tenant_id = ? AND is_pinned = 0`
	args := []any{tenantID}
	if !f.Before.IsZero() {
		query += ` AND timestamp < ?`
		args = append(args, f.Before.UTC())
	}
	if f.KeepTagged {
		query += ` AND (tags IS NULL OR tags = '' OR tags = '[]')`
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// ListUnsynced returns entries with marker local, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, tenantID string, limit int) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + localColumns + ` FROM clipboard_entries
		WHERE tenant_id = ? AND sync_status = 'local'
		ORDER BY created_at ASC, id ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limitOr(limit, DefaultUnsyncedLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced entries: %w", err)
	}
	return collect(rows, scanLocal)
}

// MarkSynced records serverID if the row still matches what was pushed.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, pushed *models.ClipboardEntry, serverID int64) error {
	query := `UPDATE clipboard_entries SET sync_status = 'synced', server_id = ?
		WHERE id = ? AND tenant_id = ? AND content_hash = ? AND is_pinned = ? AND tags IS ?`
	res, err := r.db.ExecContext(ctx, query,
		serverID, pushed.ID, pushed.TenantID, pushed.ContentHash, pushed.IsPinned, tagsValue(pushed.Tags))
	if err != nil {
		return fmt.Errorf("failed to mark entry synced: %w", err)
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

// UpsertFromRemote overwrites the row mapped to remote.ID, adopts a local
// row with the same hash, or inserts a new synced row.
func (r *SQLiteRepository) UpsertFromRemote(ctx context.Context, remote *models.ClipboardEntry) (UpsertResult, error) {
	existing, err := r.GetByServerID(ctx, remote.TenantID, remote.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return UpsertUnchanged, err
	}

	if existing == nil {
		existing, err = r.getByHash(ctx, remote.ContentHash)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return UpsertUnchanged, err
		}
		if existing != nil && existing.TenantID != remote.TenantID {
			return UpsertUnchanged, common.ErrTenantMismatch
		}
	}

	if existing == nil {
		return UpsertInserted, r.insertFromRemote(ctx, remote)
	}
	if sameAsRemote(existing, remote) {
		return UpsertUnchanged, nil
	}
	return UpsertUpdated, r.updateFromRemote(ctx, existing.ID, remote)
}

func sameAsRemote(local, remote *models.ClipboardEntry) bool {
	return local.SyncStatus == models.SyncStatusSynced &&
		local.ServerID != nil && *local.ServerID == remote.ID &&
		local.Content == remote.Content &&
		local.ContentHash == remote.ContentHash &&
		local.ContentType == remote.ContentType &&
		local.SourceApp == remote.SourceApp &&
		local.SourceWindow == remote.SourceWindow &&
		local.IsPinned == remote.IsPinned &&
		local.Tags.Equal(remote.Tags) &&
		local.Timestamp.Equal(remote.Timestamp)
}

func (r *SQLiteRepository) insertFromRemote(ctx context.Context, e *models.ClipboardEntry) error {
	query := `INSERT INTO clipboard_entries (tenant_id, content, content_type, content_hash, source_app,
			source_window, timestamp, created_at, tags, is_pinned, sync_status, server_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'synced', ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.TenantID, e.Content, string(e.ContentType), e.ContentHash, e.SourceApp, e.SourceWindow,
		e.Timestamp.UTC(), time.Now().UTC(), tagsValue(e.Tags), e.IsPinned, e.ID)
	if dbx.IsUniqueViolation(err) {
		return common.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert remote entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) updateFromRemote(ctx context.Context, localID int64, e *models.ClipboardEntry) error {
	query := `UPDATE clipboard_entries SET content = ?, content_type = ?, content_hash = ?, source_app = ?,
			source_window = ?, timestamp = ?, tags = ?, is_pinned = ?, sync_status = 'synced', server_id = ?
		WHERE id = ? AND tenant_id = ?`
	return r.execOne(ctx, query,
		e.Content, string(e.ContentType), e.ContentHash, e.SourceApp, e.SourceWindow,
		e.Timestamp.UTC(), tagsValue(e.Tags), e.IsPinned, e.ID, localID, e.TenantID)
}

package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/identity"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// PostgresRepository implements Remote over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Remote = (*PostgresRepository)(nil)

// Upsert inserts e or updates the row holding the same (tenant, content hash).
// Retrying a push therefore never creates a second remote row.
// Nil tags keep the stored tags; an empty non-nil list clears them.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.ClipboardEntry) (*models.ClipboardEntry, error) {
	query := `
		INSERT INTO clipboard_entries (tenant_id, content, content_type, content_hash, source_app,
			source_window, timestamp, tags, is_pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, content_hash)
		DO UPDATE SET
			content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			source_app = EXCLUDED.source_app,
			source_window = EXCLUDED.source_window,
			timestamp = EXCLUDED.timestamp,
			tags = COALESCE(EXCLUDED.tags, clipboard_entries.tags),
			is_pinned = EXCLUDED.is_pinned
		RETURNING ` + remoteColumns

	row := r.db.QueryRowContext(ctx, query,
		e.TenantID, e.Content, string(e.ContentType), e.ContentHash, e.SourceApp, e.SourceWindow,
		e.Timestamp.UTC(), remoteTags(e.Tags), e.IsPinned)

	stored, err := scanRemote(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

// ListAll returns every entry of the tenant, oldest first.
func (r *PostgresRepository) ListAll(ctx context.Context, tenantID string) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + remoteColumns + ` FROM clipboard_entries WHERE tenant_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	return collect(rows, scanRemote)
}

// List returns the newest entries of a tenant.
func (r *PostgresRepository) List(ctx context.Context, tenantID string, limit int) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + remoteColumns + ` FROM clipboard_entries WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limitOr(limit, DefaultListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	return collect(rows, scanRemote)
}

// GetByID returns one entry of the tenant.
func (r *PostgresRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.ClipboardEntry, error) {
	query := `SELECT ` + remoteColumns + ` FROM clipboard_entries WHERE tenant_id = $1 AND id = $2`
	e, err := scanRemote(r.db.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

// Search matches content with ILIKE.
func (r *PostgresRepository) Search(ctx context.Context, tenantID, q string, limit int) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + remoteColumns + ` FROM clipboard_entries
		WHERE tenant_id = $1 AND content ILIKE $2
		ORDER BY created_at DESC, id DESC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, tenantID, containsPattern(q), limitOr(limit, DefaultListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return collect(rows, scanRemote)
}

// ListTagged returns entries of the tenant carrying name, ignoring case.
func (r *PostgresRepository) ListTagged(ctx context.Context, tenantID, name string) ([]*models.ClipboardEntry, error) {
	query := `SELECT ` + remoteColumns + ` FROM clipboard_entries
		WHERE tenant_id = $1
			AND EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(tags, '[]'::jsonb)) v WHERE lower(v) = lower($2))
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to select tagged entries: %w", err)
	}
	return collect(rows, scanRemote)
}

// Update applies pin and tag changes.
func (r *PostgresRepository) Update(ctx context.Context, tenantID string, id int64, patch models.EntryPatch) (*models.ClipboardEntry, error) {
	var sets []string
	var args []any
	if patch.IsPinned != nil {
		args = append(args, *patch.IsPinned)
		sets = append(sets, fmt.Sprintf("is_pinned = $%d", len(args)))
	}
	if patch.Tags != nil {
		args = append(args, tagsValue(*patch.Tags))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, tenantID, id)
	}
	args = append(args, tenantID, id)
	query := fmt.Sprintf(`UPDATE clipboard_entries SET %s WHERE tenant_id = $%d AND id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	if err := r.execOne(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

// UpdateContent replaces content and recomputes hash and type.
func (r *PostgresRepository) UpdateContent(ctx context.Context, tenantID string, id int64, content string) (*models.ClipboardEntry, error) {
	ident := identity.Identify(content)
	query := `UPDATE clipboard_entries SET content = $1, content_hash = $2, content_type = $3
		WHERE tenant_id = $4 AND id = $5`
	if err := r.execOne(ctx, query, content, ident.Hash, string(ident.ContentType), tenantID, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

// DeleteByID removes the entry of the tenant.
func (r *PostgresRepository) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM clipboard_entries WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// Purge deletes unpinned entries selected by f.
func (r *PostgresRepository) Purge(ctx context.Context, tenantID string, f PurgeFilter) (int64, error) {
	query := `DELETE FROM clipboard_entries WHERE tenant_id = $1 AND is_pinned = false`
	args := []any{tenantID}
	if !f.Before.IsZero() {
		args = append(args, f.Before.UTC())
		query += fmt.Sprintf(" AND timestamp < $%d", len(args))
	}
	if f.KeepTagged {
		query += ` AND (tags IS NULL OR jsonb_array_length(tags) = 0)`
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if dbx.IsUniqueViolation(err) {
		return common.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

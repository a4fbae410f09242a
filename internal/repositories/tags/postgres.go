package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// PostgresRepository implements Remote over a DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Remote = (*PostgresRepository)(nil)

// Upsert is keyed by (tenant_id, lower(name)); the pushed spelling and color win.
func (r *PostgresRepository) Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	query := `
		INSERT INTO tags (tenant_id, name, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, lower(name))
		DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color, updated_at = now()
		RETURNING ` + remoteColumns
	stored, err := scanRemote(r.db.QueryRowContext(ctx, query, t.TenantID, t.Name, t.Color))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context, tenantID string) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+remoteColumns+` FROM tags WHERE tenant_id = $1 ORDER BY id ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	return collect(rows, scanRemote)
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+remoteColumns+` FROM tags WHERE tenant_id = $1 ORDER BY lower(name)`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	return collect(rows, scanRemote)
}

func (r *PostgresRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Tag, error) {
	return r.one(ctx, `SELECT `+remoteColumns+` FROM tags WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, tenantID, name string) (*models.Tag, error) {
	return r.one(ctx, `SELECT `+remoteColumns+` FROM tags WHERE tenant_id = $1 AND lower(name) = lower($2)`, tenantID, name)
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Tag, error) {
	t, err := scanRemote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenantID string, id int64, name, color string) (*models.Tag, error) {
	query := `UPDATE tags SET name = $1, color = $2, updated_at = now() WHERE tenant_id = $3 AND id = $4`
	if err := r.execOne(ctx, query, name, color, tenantID, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, tenantID, id)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	return r.execOne(ctx, `DELETE FROM tags WHERE tenant_id = $1 AND id = $2`, tenantID, id)
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

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Store = (*PostgresRepository)(nil)

func (r *PostgresRepository) Get(ctx context.Context, tenantID, userID string) (*models.TenantSettings, error) {
	query := `SELECT ` + columns + ` FROM tenant_settings WHERE user_id = $1 AND tenant_id = $2`
	s, err := scanSettings(r.db.QueryRowContext(ctx, query, userID, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s *models.TenantSettings) (*models.TenantSettings, error) {
	query := `
		INSERT INTO tenant_settings (user_id, tenant_id, purge_cadence, retain_tags, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id)
		DO UPDATE SET tenant_id = EXCLUDED.tenant_id, purge_cadence = EXCLUDED.purge_cadence,
			retain_tags = EXCLUDED.retain_tags, updated_at = now()
		RETURNING ` + columns
	stored, err := scanSettings(r.db.QueryRowContext(ctx, query, s.UserID, s.TenantID, s.Cadence.String(), s.RetainTags))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

package settings

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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Store = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) Get(ctx context.Context, tenantID, userID string) (*models.TenantSettings, error) {
	query := `SELECT ` + columns + ` FROM tenant_settings WHERE user_id = ? AND tenant_id = ?`
	s, err := scanSettings(r.db.QueryRowContext(ctx, query, userID, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return s, nil
}

// Save keeps UpdatedAt when the caller provides one so adopted remote rows
// retain their timestamp.
func (r *SQLiteRepository) Save(ctx context.Context, s *models.TenantSettings) (*models.TenantSettings, error) {
	updated := s.UpdatedAt.UTC()
	if s.UpdatedAt.IsZero() {
		updated = time.Now().UTC()
	}
	query := `
		INSERT INTO tenant_settings (user_id, tenant_id, purge_cadence, retain_tags, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			purge_cadence = excluded.purge_cadence,
			retain_tags = excluded.retain_tags,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, s.UserID, s.TenantID, s.Cadence.String(), s.RetainTags, updated); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return r.Get(ctx, s.TenantID, s.UserID)
}

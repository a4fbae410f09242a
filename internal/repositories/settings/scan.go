package settings

import (
	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const columns = `user_id, tenant_id, purge_cadence, retain_tags, updated_at`

func scanSettings(row rowScanner) (*models.TenantSettings, error) {
	s := &models.TenantSettings{}
	if err := row.Scan(&s.UserID, &s.TenantID, &s.Cadence, &s.RetainTags, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

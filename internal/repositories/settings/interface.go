// Package settings persists per-user tenant settings in both stores.
// There is at most one row per user.
package settings

import (
	"context"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// Store is implemented by the local and the remote backend alike.
type Store interface {
	// Get returns the settings row of the user inside the tenant or
	// common.ErrorNotFound when none was saved yet.
	Get(ctx context.Context, tenantID, userID string) (*models.TenantSettings, error)

	// Save inserts or replaces the user's row and returns what was stored.
	Save(ctx context.Context, s *models.TenantSettings) (*models.TenantSettings, error)
}

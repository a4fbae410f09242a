package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

type SettingsService struct {
	local  *storage.Local
	remote RemoteSource
	logger logging.Logger
}

func NewSettingsService(local *storage.Local, remote RemoteSource, logger logging.Logger) *SettingsService {
	return &SettingsService{local: local, remote: remote, logger: logger}
}

// Get returns the stored settings or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, tc tenancy.Context) (*models.TenantSettings, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	st, err := s.local.Settings().Get(ctx, tc.TenantID, tc.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		return models.DefaultSettings(tc.UserID, tc.TenantID), nil
	}
	return st, err
}

// Set saves the settings locally and mirrors them to the remote store when
// it is online. A remote failure leaves the difference for SyncSettings.
func (s *SettingsService) Set(ctx context.Context, tc tenancy.Context, cadence models.Cadence, retainTags bool) (*models.TenantSettings, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	st, err := s.local.Settings().Save(ctx, &models.TenantSettings{
		UserID: tc.UserID, TenantID: tc.TenantID, Cadence: cadence, RetainTags: retainTags,
	})
	if err != nil {
		return nil, err
	}

	remote, err := s.remote.Remote()
	if err != nil {
		return st, nil
	}
	if _, err := remote.Settings.Save(ctx, st); err != nil {
		s.logger.Warn(ctx, "remote settings update failed", "error", err)
	}
	return st, nil
}

// UpdatePurgeSettings turns retention on with the given cadence, or off.
func (s *SettingsService) UpdatePurgeSettings(ctx context.Context, tc tenancy.Context, enabled bool, cadence models.Cadence, retainTags bool) (*models.TenantSettings, error) {
	if !enabled {
		cadence = models.CadenceNever
	}
	return s.Set(ctx, tc, cadence, retainTags)
}

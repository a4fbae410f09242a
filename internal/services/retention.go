package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

// RetentionService deletes aged local history. It never touches the remote
// store, and pinned entries are never deleted.
type RetentionService struct {
	local    *storage.Local
	settings *SettingsService
	logger   logging.Logger
	now      func() time.Time
}

func NewRetentionService(local *storage.Local, settings *SettingsService, logger logging.Logger) *RetentionService {
	return &RetentionService{local: local, settings: settings, logger: logger, now: time.Now}
}

// Run applies the tenant's cadence: entries captured longer ago than the
// cadence are purged, tagged ones survive when retain-tags is set. Cadence
// never makes Run a no-op.
func (s *RetentionService) Run(ctx context.Context, tc tenancy.Context) (int64, error) {
	st, err := s.settings.Get(ctx, tc)
	if err != nil {
		return 0, err
	}
	if !st.Cadence.Enabled() {
		return 0, nil
	}

	n, err := s.local.Entries().Purge(ctx, tc.TenantID, entries.PurgeFilter{
		Before:     s.now().Add(-st.Cadence.Duration()),
		KeepTagged: st.RetainTags,
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "retention purged entries", "tenant", tc.TenantID, "cadence", st.Cadence.String(), "deleted", n)
	}
	return n, nil
}

// PurgeUnpinned deletes every unpinned entry regardless of age, keeping
// tagged ones when keepTagged is set.
func (s *RetentionService) PurgeUnpinned(ctx context.Context, tc tenancy.Context, keepTagged bool) (int64, error) {
	if err := tc.Validate(); err != nil {
		return 0, err
	}
	return s.local.Entries().Purge(ctx, tc.TenantID, entries.PurgeFilter{KeepTagged: keepTagged})
}

// PurgeOlderThan deletes unpinned entries captured before now-age.
func (s *RetentionService) PurgeOlderThan(ctx context.Context, tc tenancy.Context, age time.Duration, keepTagged bool) (int64, error) {
	if err := tc.Validate(); err != nil {
		return 0, err
	}
	return s.local.Entries().Purge(ctx, tc.TenantID, entries.PurgeFilter{
		Before:     s.now().Add(-age),
		KeepTagged: keepTagged,
	})
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

// SyncService moves rows between the local and the remote store.
//
// A push walks unsynced local rows oldest first, upserts each remotely and
// marks it synced. A pull upserts every remote row of the tenant into the
// local store. Row failures are recorded as skipped outcomes and never abort
// a pass; only an unreachable remote store fails the whole call, with
// common.ErrCloudUnavailable.
type SyncService struct {
	local     *storage.Local
	remote    RemoteSource
	logger    logging.Logger
	batchSize int
}

func NewSyncService(local *storage.Local, remote RemoteSource, logger logging.Logger, batchSize int) *SyncService {
	return &SyncService{local: local, remote: remote, logger: logger, batchSize: batchSize}
}

func (s *SyncService) begin(tc tenancy.Context) (*storage.Remote, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return s.remote.Remote()
}

// Sync pushes entries and tags and reconciles settings.
func (s *SyncService) Sync(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	log := s.logger.With("run_id", rep.RunID.String(), "tenant", tc.TenantID)

	if err := s.pushTags(ctx, tc, remote, rep); err != nil {
		return rep, err
	}
	if err := s.pushEntries(ctx, tc, remote, rep); err != nil {
		return rep, err
	}
	if err := s.syncSettings(ctx, tc, remote, rep); err != nil {
		return rep, err
	}

	log.Info(ctx, "sync finished", "result", rep.String())
	return rep, nil
}

// Bootstrap pulls tags and entries and reconciles settings.
func (s *SyncService) Bootstrap(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	log := s.logger.With("run_id", rep.RunID.String(), "tenant", tc.TenantID)

	if err := s.pullTags(ctx, tc, remote, rep); err != nil {
		return rep, err
	}
	if err := s.pullEntries(ctx, tc, remote, rep); err != nil {
		return rep, err
	}
	if err := s.syncSettings(ctx, tc, remote, rep); err != nil {
		return rep, err
	}

	log.Info(ctx, "bootstrap finished", "result", rep.String())
	return rep, nil
}

// PushEntries runs only the entry push pass.
func (s *SyncService) PushEntries(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	return rep, s.pushEntries(ctx, tc, remote, rep)
}

// PullEntries runs only the entry pull pass.
func (s *SyncService) PullEntries(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	return rep, s.pullEntries(ctx, tc, remote, rep)
}

// PushTags runs only the tag push pass.
func (s *SyncService) PushTags(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	return rep, s.pushTags(ctx, tc, remote, rep)
}

// PullTags runs only the tag pull pass.
func (s *SyncService) PullTags(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	return rep, s.pullTags(ctx, tc, remote, rep)
}

// SyncSettings reconciles only the tenant settings.
func (s *SyncService) SyncSettings(ctx context.Context, tc tenancy.Context) (*Report, error) {
	remote, err := s.begin(tc)
	if err != nil {
		return nil, err
	}
	rep := newReport()
	return rep, s.syncSettings(ctx, tc, remote, rep)
}

func (s *SyncService) pushEntries(ctx context.Context, tc tenancy.Context, remote *storage.Remote, rep *Report) error {
	pending, err := s.local.Entries().ListUnsynced(ctx, tc.TenantID, s.batchSize)
	if err != nil {
		return fmt.Errorf("error retrieving entries: %w", err)
	}

	for _, e := range pending {
		if ctx.Err() != nil {
			rep.add(RowOutcome{Entity: EntityEntry, LocalID: e.ID, Kind: OutcomeSkipped, Reason: ReasonCancelled, Err: ctx.Err()})
			continue
		}
		rep.add(s.pushEntry(ctx, tc, remote, e))
	}
	return nil
}

func (s *SyncService) pushEntry(ctx context.Context, tc tenancy.Context, remote *storage.Remote, e *models.ClipboardEntry) RowOutcome {
	out := RowOutcome{Entity: EntityEntry, LocalID: e.ID}

	req := *e
	req.TenantID = tc.TenantID
	if e.ServerID != nil && len(e.Tags) == 0 {
		// Known remote row without local tags: the tags were cleared here.
		req.Tags = models.TagList{}
	}
	stored, err := remote.Entries.Upsert(ctx, &req)
	if err != nil {
		s.logger.Warn(ctx, "entry push failed", "entry", e.ID, "error", err)
		out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonRemoteWrite, err
		return out
	}
	out.ServerID = stored.ID

	err = s.local.Entries().MarkSynced(ctx, e, stored.ID)
	switch {
	case errors.Is(err, entries.ErrModifiedDuringPush):
		s.logger.Debug(ctx, "entry changed during push", "entry", e.ID)
		out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonModifiedInFlight, err
	case err != nil:
		s.logger.Warn(ctx, "mark synced failed", "entry", e.ID, "error", err)
		out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonMarkFailed, err
	default:
		out.Kind = OutcomeSynced
	}
	return out
}

func (s *SyncService) pullEntries(ctx context.Context, tc tenancy.Context, remote *storage.Remote, rep *Report) error {
	rows, err := remote.Entries.ListAll(ctx, tc.TenantID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCloudUnavailable, err)
	}

	for _, r := range rows {
		out := RowOutcome{Entity: EntityEntry, ServerID: r.ID}
		if ctx.Err() != nil {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonCancelled, ctx.Err()
			rep.add(out)
			continue
		}
		if r.TenantID != tc.TenantID {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonTenantMismatch, common.ErrTenantMismatch
			rep.add(out)
			continue
		}

		res, err := s.local.Entries().UpsertFromRemote(ctx, r)
		switch {
		case errors.Is(err, common.ErrTenantMismatch):
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonTenantMismatch, err
		case err != nil:
			s.logger.Warn(ctx, "entry pull failed", "server_id", r.ID, "error", err)
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonLocalWrite, err
		default:
			out.Kind = entryOutcome(res)
		}
		rep.add(out)
	}
	return nil
}

func entryOutcome(r entries.UpsertResult) OutcomeKind {
	switch r {
	case entries.UpsertInserted:
		return OutcomeInserted
	case entries.UpsertUpdated:
		return OutcomeUpdated
	default:
		return OutcomeUnchanged
	}
}

func tagOutcome(r tags.UpsertResult) OutcomeKind {
	switch r {
	case tags.UpsertInserted:
		return OutcomeInserted
	case tags.UpsertUpdated:
		return OutcomeUpdated
	default:
		return OutcomeUnchanged
	}
}

func (s *SyncService) pushTags(ctx context.Context, tc tenancy.Context, remote *storage.Remote, rep *Report) error {
	pending, err := s.local.Tags().ListUnsynced(ctx, tc.TenantID, s.batchSize)
	if err != nil {
		return fmt.Errorf("error retrieving tags: %w", err)
	}

	for _, t := range pending {
		out := RowOutcome{Entity: EntityTag, LocalID: t.ID}
		if ctx.Err() != nil {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonCancelled, ctx.Err()
			rep.add(out)
			continue
		}

		req := *t
		req.TenantID = tc.TenantID
		stored, err := remote.Tags.Upsert(ctx, &req)
		if err != nil {
			s.logger.Warn(ctx, "tag push failed", "tag", t.Name, "error", err)
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonRemoteWrite, err
			rep.add(out)
			continue
		}
		out.ServerID = stored.ID

		err = s.local.Tags().MarkSynced(ctx, t, stored.ID)
		switch {
		case errors.Is(err, tags.ErrModifiedDuringPush):
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonModifiedInFlight, err
		case err != nil:
			s.logger.Warn(ctx, "mark tag synced failed", "tag", t.Name, "error", err)
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonMarkFailed, err
		default:
			out.Kind = OutcomeSynced
		}
		rep.add(out)
	}
	return nil
}

func (s *SyncService) pullTags(ctx context.Context, tc tenancy.Context, remote *storage.Remote, rep *Report) error {
	rows, err := remote.Tags.ListAll(ctx, tc.TenantID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCloudUnavailable, err)
	}

	for _, r := range rows {
		out := RowOutcome{Entity: EntityTag, ServerID: r.ID}
		if ctx.Err() != nil {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonCancelled, ctx.Err()
			rep.add(out)
			continue
		}
		if r.TenantID != tc.TenantID {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonTenantMismatch, common.ErrTenantMismatch
			rep.add(out)
			continue
		}

		res, err := s.local.Tags().UpsertFromRemote(ctx, r)
		if err != nil {
			s.logger.Warn(ctx, "tag pull failed", "tag", r.Name, "error", err)
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonLocalWrite, err
		} else {
			out.Kind = tagOutcome(res)
		}
		rep.add(out)
	}
	return nil
}

// syncSettings adopts the remote row when the local one is missing and
// otherwise pushes the local row when the values differ.
func (s *SyncService) syncSettings(ctx context.Context, tc tenancy.Context, remote *storage.Remote, rep *Report) error {
	out := RowOutcome{Entity: EntitySettings, Kind: OutcomeUnchanged}

	local, err := s.local.Settings().Get(ctx, tc.TenantID, tc.UserID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error retrieving settings: %w", err)
	}
	shared, err := remote.Settings.Get(ctx, tc.TenantID, tc.UserID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonRemoteWrite, err
		rep.add(out)
		return nil
	}

	switch {
	case local == nil && shared == nil:
	case local == nil:
		if _, err := s.local.Settings().Save(ctx, shared); err != nil {
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonLocalWrite, err
		} else {
			out.Kind = OutcomeAdopted
		}
	case shared == nil || !local.SameValues(shared):
		if _, err := remote.Settings.Save(ctx, local); err != nil {
			s.logger.Warn(ctx, "settings push failed", "error", err)
			out.Kind, out.Reason, out.Err = OutcomeSkipped, ReasonRemoteWrite, err
		} else {
			out.Kind = OutcomePushed
		}
	}
	rep.add(out)
	return nil
}

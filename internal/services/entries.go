package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/identity"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

// Capture is one clipboard observation handed over by the capture collaborator.
type Capture struct {
	Content      string
	SourceApp    string
	SourceWindow string
	Timestamp    time.Time
}

type EntryService struct {
	local     *storage.Local
	remote    RemoteSource
	logger    logging.Logger
	listLimit int
}

func NewEntryService(local *storage.Local, remote RemoteSource, logger logging.Logger, listLimit int) *EntryService {
	return &EntryService{local: local, remote: remote, logger: logger, listLimit: listLimit}
}

// Capture stores text in the local store with marker local. Text that is
// already stored yields common.ErrDuplicate, which callers treat as success.
func (s *EntryService) Capture(ctx context.Context, tc tenancy.Context, c Capture) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Content) == "" {
		return nil, common.ErrEmptyContent
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}

	ident := identity.Identify(c.Content)
	e, err := s.local.Entries().Insert(ctx, &models.ClipboardEntry{
		TenantID:     tc.TenantID,
		Content:      c.Content,
		ContentType:  ident.ContentType,
		ContentHash:  ident.Hash,
		SourceApp:    c.SourceApp,
		SourceWindow: c.SourceWindow,
		Timestamp:    c.Timestamp,
	})
	if errors.Is(err, common.ErrDuplicate) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return e, nil
}

func (s *EntryService) List(ctx context.Context, tc tenancy.Context, limit int) ([]*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.listLimit
	}
	return s.local.Entries().List(ctx, tc.TenantID, limit)
}

func (s *EntryService) Search(ctx context.Context, tc tenancy.Context, query string, limit int) ([]*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.listLimit
	}
	return s.local.Entries().Search(ctx, tc.TenantID, query, limit)
}

func (s *EntryService) ListTagged(ctx context.Context, tc tenancy.Context, tag string) ([]*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return s.local.Entries().ListTagged(ctx, tc.TenantID, tag)
}

func (s *EntryService) Get(ctx context.Context, tc tenancy.Context, id int64) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return s.local.Entries().GetByID(ctx, tc.TenantID, id)
}

// UpdateContent replaces the text of an entry. The hash is recomputed and the
// entry goes back to marker local.
func (s *EntryService) UpdateContent(ctx context.Context, tc tenancy.Context, id int64, content string) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrEmptyContent
	}
	return s.local.Entries().UpdateContent(ctx, tc.TenantID, id, content)
}

func (s *EntryService) SetPinned(ctx context.Context, tc tenancy.Context, id int64, pinned bool) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return s.local.Entries().Update(ctx, tc.TenantID, id, models.EntryPatch{IsPinned: &pinned})
}

// AssignTag adds a tag name to an entry. A tag that does not exist yet is
// created with the default color.
func (s *EntryService) AssignTag(ctx context.Context, tc tenancy.Context, id int64, name string) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	name, err := NormalizeTagName(name)
	if err != nil {
		return nil, err
	}

	tag, err := s.local.Tags().GetByName(ctx, tc.TenantID, name)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		tag, err = s.local.Tags().Insert(ctx, &models.Tag{TenantID: tc.TenantID, Name: name, Color: models.DefaultTagColor})
		if err != nil && !errors.Is(err, common.ErrDuplicate) {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if tag != nil {
		name = tag.Name
	}

	e, err := s.local.Entries().GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if e.HasTag(name) {
		return e, nil
	}
	tags := e.Tags.With(name)
	return s.local.Entries().Update(ctx, tc.TenantID, id, models.EntryPatch{Tags: &tags})
}

// RemoveTag drops a tag name from an entry; removing an absent tag is a no-op.
func (s *EntryService) RemoveTag(ctx context.Context, tc tenancy.Context, id int64, name string) (*models.ClipboardEntry, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	e, err := s.local.Entries().GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !e.HasTag(name) {
		return e, nil
	}
	tags := e.Tags.Without(name)
	return s.local.Entries().Update(ctx, tc.TenantID, id, models.EntryPatch{Tags: &tags})
}

// Delete removes the local entry and, when it was synced and the remote
// store is online, its remote row. Remote failures are only logged.
func (s *EntryService) Delete(ctx context.Context, tc tenancy.Context, id int64) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	e, err := s.local.Entries().GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.local.Entries().DeleteByID(ctx, tc.TenantID, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}

	if e.ServerID == nil {
		return nil
	}
	remote, err := s.remote.Remote()
	if err != nil {
		s.logger.Debug(ctx, "remote delete deferred", "entry", id, "error", err)
		return nil
	}
	if err := remote.Entries.DeleteByID(ctx, tc.TenantID, *e.ServerID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "remote delete failed", "entry", id, "server_id", *e.ServerID, "error", err)
	}
	return nil
}

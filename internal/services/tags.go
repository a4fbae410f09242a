package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/dbx"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

type TagService struct {
	local  *storage.Local
	remote RemoteSource
	logger logging.Logger
}

func NewTagService(local *storage.Local, remote RemoteSource, logger logging.Logger) *TagService {
	return &TagService{local: local, remote: remote, logger: logger}
}

// Create validates name and color and stores a new tag with marker local.
// A case-insensitive name clash yields common.ErrDuplicate.
func (s *TagService) Create(ctx context.Context, tc tenancy.Context, name, color string) (*models.Tag, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	name, err := NormalizeTagName(name)
	if err != nil {
		return nil, err
	}
	color, err = NormalizeTagColor(color)
	if err != nil {
		return nil, err
	}
	return s.local.Tags().Insert(ctx, &models.Tag{TenantID: tc.TenantID, Name: name, Color: color})
}

func (s *TagService) List(ctx context.Context, tc tenancy.Context) ([]*models.Tag, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return s.local.Tags().List(ctx, tc.TenantID)
}

// Usage lists tags with the number of local entries carrying each, most used
// first.
func (s *TagService) Usage(ctx context.Context, tc tenancy.Context) ([]models.TagUsage, error) {
	list, err := s.List(ctx, tc)
	if err != nil {
		return nil, err
	}
	out := make([]models.TagUsage, 0, len(list))
	for _, t := range list {
		tagged, err := s.local.Entries().ListTagged(ctx, tc.TenantID, t.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TagUsage{Tag: *t, Entries: len(tagged)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entries > out[j].Entries })
	return out, nil
}

// Update renames and/or recolors a tag; empty arguments keep the current
// value. A rename is applied to every local entry carrying the old name.
func (s *TagService) Update(ctx context.Context, tc tenancy.Context, id int64, name, color string) (*models.Tag, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	current, err := s.local.Tags().GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = current.Name
	} else if name, err = NormalizeTagName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(color) == "" {
		color = current.Color
	} else if color, err = NormalizeTagColor(color); err != nil {
		return nil, err
	}

	var updated *models.Tag
	err = dbx.WithTx(ctx, s.local.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updated, err = s.local.Manager.Tags(tx).Update(ctx, tc.TenantID, id, name, color)
		if err != nil {
			return err
		}
		if current.Name == name {
			return nil
		}
		return s.retag(ctx, tx, tc.TenantID, current.Name, name)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a tag, strips it from local entries and, when the tag was
// synced and the remote store is online, deletes the remote tag too.
func (s *TagService) Delete(ctx context.Context, tc tenancy.Context, id int64) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	tag, err := s.local.Tags().GetByID(ctx, tc.TenantID, id)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.local.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.retag(ctx, tx, tc.TenantID, tag.Name, ""); err != nil {
			return err
		}
		return s.local.Manager.Tags(tx).DeleteByID(ctx, tc.TenantID, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting tag: %w", err)
	}

	if tag.ServerID == nil {
		return nil
	}
	remote, err := s.remote.Remote()
	if err != nil {
		s.logger.Debug(ctx, "remote tag delete deferred", "tag", tag.Name, "error", err)
		return nil
	}
	if err := remote.Tags.DeleteByID(ctx, tc.TenantID, *tag.ServerID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "remote tag delete failed", "tag", tag.Name, "error", err)
	}
	return nil
}

// retag replaces oldName with newName on every entry of the tenant, or
// removes it when newName is empty.
func (s *TagService) retag(ctx context.Context, tx dbx.DBTX, tenantID, oldName, newName string) error {
	repo := s.local.Manager.Entries(tx)
	tagged, err := repo.ListTagged(ctx, tenantID, oldName)
	if err != nil {
		return err
	}
	for _, e := range tagged {
		tags := e.Tags.Without(oldName)
		if newName != "" {
			tags = tags.With(newName)
		}
		if _, err := repo.Update(ctx, tenantID, e.ID, models.EntryPatch{Tags: &tags}); err != nil {
			return err
		}
	}
	return nil
}

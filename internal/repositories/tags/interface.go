// Package tags persists tenant-scoped tags in the local (SQLite) and the
// remote (PostgreSQL) store. Names are unique per tenant ignoring case.
package tags

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// DefaultUnsyncedLimit bounds one tag push pass.
const DefaultUnsyncedLimit = 500

// ErrModifiedDuringPush reports that a tag changed between being read for a
// push and being marked synced.
var ErrModifiedDuringPush = errors.New("tag modified during push")

// Store is the operation set both backends provide.
type Store interface {
	// List returns the tenant's tags ordered by name.
	List(ctx context.Context, tenantID string) ([]*models.Tag, error)

	// GetByID returns one tag or common.ErrorNotFound.
	GetByID(ctx context.Context, tenantID string, id int64) (*models.Tag, error)

	// GetByName matches the name case-insensitively.
	GetByName(ctx context.Context, tenantID, name string) (*models.Tag, error)

	// Update renames or recolors a tag. A name clash yields common.ErrDuplicate.
	Update(ctx context.Context, tenantID string, id int64, name, color string) (*models.Tag, error)

	// DeleteByID removes a tag or returns common.ErrorNotFound.
	DeleteByID(ctx context.Context, tenantID string, id int64) error
}

// UpsertResult tells what UpsertFromRemote did to the local store.
type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertInserted
	UpsertUpdated
)

// Local is the device tag store.
type Local interface {
	Store

	// Insert stores a new tag with marker local.
	Insert(ctx context.Context, t *models.Tag) (*models.Tag, error)

	// GetByServerID looks a tag up by its remote identifier.
	GetByServerID(ctx context.Context, tenantID string, serverID int64) (*models.Tag, error)

	// ListUnsynced returns tags with marker local in id order.
	ListUnsynced(ctx context.Context, tenantID string, limit int) ([]*models.Tag, error)

	// MarkSynced flips pushed to synced if name and color are unchanged.
	MarkSynced(ctx context.Context, pushed *models.Tag, serverID int64) error

	// UpsertFromRemote writes a remote tag locally with marker synced,
	// matching by remote identifier first and name second.
	UpsertFromRemote(ctx context.Context, remote *models.Tag) (UpsertResult, error)
}

// Remote is the shared tag store.
type Remote interface {
	Store

	// Upsert inserts t or updates the tag with the same (tenant, lower(name)).
	Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error)

	// ListAll returns every tag of the tenant in id order.
	ListAll(ctx context.Context, tenantID string) ([]*models.Tag, error)
}

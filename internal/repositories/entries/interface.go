package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// Default limits applied when the caller passes a non-positive limit.
const (
	DefaultListLimit     = 100
	DefaultUnsyncedLimit = 500
)

// PurgeFilter selects unpinned entries of a tenant for deletion.
// Pinned entries are never matched.
type PurgeFilter struct {
	// Before, when non-zero, restricts the purge to entries captured earlier.
	Before time.Time
	// KeepTagged leaves entries with at least one tag in place.
	KeepTagged bool
}

// Store is the operation set both backends provide.
type Store interface {
	// List returns the newest entries of a tenant.
	List(ctx context.Context, tenantID string, limit int) ([]*models.ClipboardEntry, error)

	// GetByID returns one entry or common.ErrorNotFound.
	GetByID(ctx context.Context, tenantID string, id int64) (*models.ClipboardEntry, error)

	// Search matches content case-insensitively.
	Search(ctx context.Context, tenantID, query string, limit int) ([]*models.ClipboardEntry, error)

	// ListTagged returns entries carrying the tag name (case-insensitive).
	ListTagged(ctx context.Context, tenantID, name string) ([]*models.ClipboardEntry, error)

	// Update applies pin and tag changes.
	Update(ctx context.Context, tenantID string, id int64, patch models.EntryPatch) (*models.ClipboardEntry, error)

	// UpdateContent replaces content and recomputes hash and type.
	// A clash with another entry's hash yields common.ErrDuplicate.
	UpdateContent(ctx context.Context, tenantID string, id int64, content string) (*models.ClipboardEntry, error)

	// DeleteByID removes an entry or returns common.ErrorNotFound.
	DeleteByID(ctx context.Context, tenantID string, id int64) error

	// Purge deletes entries matched by f and returns how many were removed.
	Purge(ctx context.Context, tenantID string, f PurgeFilter) (int64, error)
}

// UpsertResult tells what UpsertFromRemote did to the local store.
type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertInserted
	UpsertUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertInserted:
		return "inserted"
	case UpsertUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Local is the device store. Every mutation other than MarkSynced and
// UpsertFromRemote resets the sync marker to local.
type Local interface {
	Store

	// Insert stores a freshly captured entry with marker local. An entry
	// with the same content hash yields common.ErrDuplicate.
	Insert(ctx context.Context, e *models.ClipboardEntry) (*models.ClipboardEntry, error)

	// GetByServerID looks an entry up by its remote identifier.
	GetByServerID(ctx context.Context, tenantID string, serverID int64) (*models.ClipboardEntry, error)

	// ListUnsynced returns entries with marker local, oldest first.
	ListUnsynced(ctx context.Context, tenantID string, limit int) ([]*models.ClipboardEntry, error)

	// MarkSynced flips pushed to synced and records serverID, provided the
	// row still holds the pushed hash, pin and tags. Otherwise it returns
	// ErrModifiedDuringPush and the row stays local for the next pass.
	MarkSynced(ctx context.Context, pushed *models.ClipboardEntry, serverID int64) error

	// UpsertFromRemote writes a remote row into the local store with marker
	// synced, matching by remote identifier first and content hash second.
	UpsertFromRemote(ctx context.Context, remote *models.ClipboardEntry) (UpsertResult, error)
}

// Remote is the shared cross-device store.
type Remote interface {
	Store

	// Upsert inserts e or, when (tenant, content hash) exists, overwrites its
	// mutable fields. Tags are only overwritten when e carries some.
	// The stored row is returned.
	Upsert(ctx context.Context, e *models.ClipboardEntry) (*models.ClipboardEntry, error)

	// ListAll returns every entry of the tenant, oldest first.
	ListAll(ctx context.Context, tenantID string) ([]*models.ClipboardEntry, error)
}

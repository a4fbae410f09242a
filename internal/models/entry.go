// Package models defines the rows exchanged between the local store, the
// remote store and the services that replicate them.
package models

import (
	"time"
)

// SyncStatus is the per-row marker distinguishing rows not yet pushed from
// rows confirmed present in the remote store.
type SyncStatus string

const (
	SyncStatusLocal  SyncStatus = "local"
	SyncStatusSynced SyncStatus = "synced"
)

// ContentType is the coarse classification of captured text.
type ContentType string

const (
	ContentTypeText    ContentType = "text"
	ContentTypeURL     ContentType = "url"
	ContentTypeEmail   ContentType = "email"
	ContentTypeNumeric ContentType = "numeric"
)

// ClipboardEntry is one captured text snippet.
//
// In the local store ID is the device-local rowid and ServerID is set once the
// row has been pushed. In the remote store ID is the canonical remote id and
// SyncStatus/ServerID are unused.
type ClipboardEntry struct {
	ID           int64
	TenantID     string
	Content      string
	ContentType  ContentType
	ContentHash  string
	SourceApp    string
	SourceWindow string
	Timestamp    time.Time
	CreatedAt    time.Time
	Tags         TagList
	IsPinned     bool
	SyncStatus   SyncStatus
	ServerID     *int64
}

// IsSynced reports whether the row is confirmed remotely.
func (e *ClipboardEntry) IsSynced() bool {
	return e.SyncStatus == SyncStatusSynced && e.ServerID != nil
}

// HasTag reports whether name is attached to the entry (case-insensitive).
func (e *ClipboardEntry) HasTag(name string) bool {
	return e.Tags.Contains(name)
}

// EntryPatch carries the optional pin and tag mutations of an update.
// Nil fields are left unchanged.
type EntryPatch struct {
	IsPinned *bool
	Tags     *TagList
}

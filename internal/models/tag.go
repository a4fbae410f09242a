package models

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#6B7280"

// MaxTagNameLength bounds a trimmed tag name.
const MaxTagNameLength = 50

// Tag is a tenant-scoped label attached to entries by name.
type Tag struct {
	ID         int64
	TenantID   string
	Name       string
	Color      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncStatus SyncStatus
	ServerID   *int64
}

// TagUsage pairs a tag with the number of local entries carrying it.
type TagUsage struct {
	Tag
	Entries int
}

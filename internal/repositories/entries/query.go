package entries

import (
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const remoteColumns = `id, tenant_id, content, content_type, content_hash, source_app, source_window,
	timestamp, created_at, tags, is_pinned`

const localColumns = remoteColumns + `, sync_status, server_id`

func scanRemote(row rowScanner) (*models.ClipboardEntry, error) {
	e := &models.ClipboardEntry{}
	if err := row.Scan(&e.ID, &e.TenantID, &e.Content, &e.ContentType, &e.ContentHash,
		&e.SourceApp, &e.SourceWindow, &e.Timestamp, &e.CreatedAt, &e.Tags, &e.IsPinned); err != nil {
		return nil, err
	}
	e.Timestamp = e.Timestamp.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func scanLocal(row rowScanner) (*models.ClipboardEntry, error) {
	e := &models.ClipboardEntry{}
	var serverID sql.NullInt64
	if err := row.Scan(&e.ID, &e.TenantID, &e.Content, &e.ContentType, &e.ContentHash,
		&e.SourceApp, &e.SourceWindow, &e.Timestamp, &e.CreatedAt, &e.Tags, &e.IsPinned,
		&e.SyncStatus, &serverID); err != nil {
		return nil, err
	}
	if serverID.Valid {
		id := serverID.Int64
		e.ServerID = &id
	}
	e.Timestamp = e.Timestamp.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func collect(rows *sql.Rows, scan func(rowScanner) (*models.ClipboardEntry, error)) ([]*models.ClipboardEntry, error) {
	defer rows.Close()

	var result []*models.ClipboardEntry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, escaped with '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// tagsValue converts tags to the driver value stored in the tags column.
func tagsValue(l models.TagList) any {
	v, _ := l.Value()
	return v
}

// remoteTags is tagsValue for the remote store: a non-nil empty list is sent
// as "[]" so that it replaces the stored tags instead of keeping them.
func remoteTags(l models.TagList) any {
	v, _ := l.RemoteValue()
	return v
}

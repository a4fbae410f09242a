package tags

import (
	"database/sql"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const remoteColumns = `id, tenant_id, name, color, created_at, updated_at`

const localColumns = remoteColumns + `, sync_status, server_id`

func scanRemote(row rowScanner) (*models.Tag, error) {
	t := &models.Tag{}
	if err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func scanLocal(row rowScanner) (*models.Tag, error) {
	t := &models.Tag{}
	var serverID sql.NullInt64
	if err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt,
		&t.SyncStatus, &serverID); err != nil {
		return nil, err
	}
	if serverID.Valid {
		id := serverID.Int64
		t.ServerID = &id
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func collect(rows *sql.Rows, scan func(rowScanner) (*models.Tag, error)) ([]*models.Tag, error) {
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

package settings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/migrations"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.UpLocal(context.Background(), db))
	return db
}

func TestSQLite_GetMissing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background(), "t1", "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_SaveAndOverwrite(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	saved, err := r.Save(ctx, &models.TenantSettings{UserID: "u1", TenantID: "t1", Cadence: models.CadenceEveryWeek})
	require.NoError(t, err)
	assert.Equal(t, models.CadenceEveryWeek, saved.Cadence)
	assert.False(t, saved.UpdatedAt.IsZero())

	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	saved, err = r.Save(ctx, &models.TenantSettings{UserID: "u1", TenantID: "t1", Cadence: models.CadenceEvery3Days, RetainTags: true, UpdatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, models.CadenceEvery3Days, saved.Cadence)
	assert.True(t, saved.RetainTags)
	assert.True(t, at.Equal(saved.UpdatedAt))

	_, err = r.Get(ctx, "t2", "u1")
	require.ErrorIs(t, err, common.ErrorNotFound, "rows are scoped by tenant")
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/migrations"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLocal_Memory(t *testing.T) {
	ctx := context.Background()
	l, err := OpenLocal(ctx, MemoryPath)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.Tags().Insert(ctx, &models.Tag{TenantID: "t1", Name: "x", Color: models.DefaultTagColor})
	require.NoError(t, err)

	list, err := l.Tags().List(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpenLocal_FileCreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "clip.db")

	l, err := OpenLocal(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	// reopening runs migrations again without error
	l, err = OpenLocal(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestOpenLocal_OpenFailureIsFatal(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("disk gone") }
	defer func() { sqlOpen = orig }()

	_, err := OpenLocal(context.Background(), "x.db")
	require.ErrorIs(t, err, common.ErrLocalStoreUnavailable)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestRemoteConnector_DisabledWithoutDSN(t *testing.T) {
	c := NewRemoteConnector("", "", 0, logging.Discard())
	assert.Equal(t, ModeDisabled, c.Mode())
	assert.Equal(t, ModeDisabled, c.Ping(context.Background()))

	require.ErrorIs(t, c.Connect(context.Background()), common.ErrCloudUnavailable)
	_, err := c.Remote()
	require.ErrorIs(t, err, common.ErrCloudUnavailable)
}

func TestRemoteConnector_Defaults(t *testing.T) {
	c := NewRemoteConnector("", "postgres://x", 0, logging.Discard())
	assert.Equal(t, DriverPgx, c.driver)
	assert.Equal(t, DefaultConnectTimeout, c.timeout)
	assert.Equal(t, ModeOffline, c.Mode())

	assert.Equal(t, migrations.DialectPostgres, gooseDialect(DriverPq))
	assert.Equal(t, migrations.DialectPgx, gooseDialect(DriverPgx))
}

func TestRemoteConnector_PingFailureStaysOffline(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) { return db, nil }
	defer func() { sqlOpen = orig }()

	c := NewRemoteConnector(DriverPgx, "postgres://x", time.Second, logging.Discard())
	err = c.Connect(context.Background())
	require.ErrorIs(t, err, common.ErrCloudUnavailable)
	assert.Equal(t, ModeOffline, c.Mode())

	_, err = c.Remote()
	require.ErrorIs(t, err, common.ErrCloudUnavailable)
}

func TestRemoteConnector_PingTransitions(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	c := NewRemoteConnector(DriverPgx, "postgres://x", time.Second, logging.Discard())
	c.db = db
	c.migrated = true

	mock.ExpectPing()
	assert.Equal(t, ModeOnline, c.Ping(context.Background()))

	r, err := c.Remote()
	require.NoError(t, err)
	assert.NotNil(t, r.Entries)
	assert.NotNil(t, r.Tags)
	assert.NotNil(t, r.Settings)

	mock.ExpectPing().WillReturnError(errors.New("reset by peer"))
	assert.Equal(t, ModeOffline, c.Ping(context.Background()))

	_, err = c.Remote()
	require.ErrorIs(t, err, common.ErrCloudUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

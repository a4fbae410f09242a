package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/migrations"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/settings"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Supported remote database/sql drivers.
const (
	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

// DefaultConnectTimeout bounds the initial remote connection attempt.
const DefaultConnectTimeout = 40 * time.Second

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// Remote bundles the shared-store repositories of one connection.
type Remote struct {
	Entries  entries.Remote
	Tags     tags.Remote
	Settings settings.Store
}

// RemoteConnector owns the remote connection and tracks whether it is usable.
// A connector with an empty DSN stays in ModeDisabled.
type RemoteConnector struct {
	driver  string
	dsn     string
	timeout time.Duration
	manager repomanager.RemoteManager
	logger  logging.Logger

	mu       sync.RWMutex
	db       *sql.DB
	mode     Mode
	migrated bool
}

func NewRemoteConnector(driver, dsn string, timeout time.Duration, logger logging.Logger) *RemoteConnector {
	if driver == "" {
		driver = DriverPgx
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	mode := ModeOffline
	if dsn == "" {
		mode = ModeDisabled
	}
	return &RemoteConnector{
		driver:  driver,
		dsn:     dsn,
		timeout: timeout,
		manager: repomanager.NewPostgresRepositoryManager(gooseDialect(driver)),
		logger:  logger,
		mode:    mode,
	}
}

func gooseDialect(driver string) string {
	if driver == DriverPq {
		return migrations.DialectPostgres
	}
	return migrations.DialectPgx
}

// Connect opens the database, pings it and applies the remote migrations,
// all within the connect timeout. On failure the connector stays offline.
func (c *RemoteConnector) Connect(ctx context.Context) error {
	if c.dsn == "" {
		return common.ErrCloudUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		db, err := sqlOpen(c.driver, c.dsn)
		if err != nil {
			c.mode = ModeOffline
			return fmt.Errorf("%w: %v", common.ErrCloudUnavailable, err)
		}
		c.db = db
	}

	if err := c.db.PingContext(ctx); err != nil {
		c.mode = ModeOffline
		return fmt.Errorf("%w: %v", common.ErrCloudUnavailable, err)
	}

	if !c.migrated {
		if err := c.manager.RunMigrations(ctx, c.db); err != nil {
			c.mode = ModeOffline
			return fmt.Errorf("%w: %v", common.ErrCloudUnavailable, err)
		}
		c.migrated = true
	}

	c.mode = ModeOnline
	return nil
}

// Ping checks the connection, connecting first when none was established.
// It returns the resulting mode.
func (c *RemoteConnector) Ping(ctx context.Context) Mode {
	c.mu.RLock()
	db, migrated, mode := c.db, c.migrated, c.mode
	c.mu.RUnlock()

	if mode == ModeDisabled {
		return ModeDisabled
	}

	if db == nil || !migrated {
		if err := c.Connect(ctx); err != nil {
			c.logger.Debug(ctx, "remote connect failed", "error", err)
		}
		return c.Mode()
	}

	err := db.PingContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.mode = ModeOffline
	} else {
		c.mode = ModeOnline
	}
	return c.mode
}

func (c *RemoteConnector) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Remote returns the repositories or common.ErrCloudUnavailable when the
// connector is not online.
func (c *RemoteConnector) Remote() (*Remote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mode != ModeOnline || c.db == nil {
		return nil, common.ErrCloudUnavailable
	}
	return &Remote{
		Entries:  c.manager.Entries(c.db),
		Tags:     c.manager.Tags(c.db),
		Settings: c.manager.Settings(c.db),
	}, nil
}

func (c *RemoteConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.migrated = false
	if c.mode != ModeDisabled {
		c.mode = ModeOffline
	}
	if err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

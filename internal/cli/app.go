package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/capture"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/config"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/services"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

// pingTimeout bounds one reachability check of the remote store.
const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	local   *storage.Local
	remote  *storage.RemoteConnector
	session *tenancy.Holder

	entries   *services.EntryService
	tags      *services.TagService
	settings  *services.SettingsService
	sync      *services.SyncService
	retention *services.RetentionService

	modeMu sync.Mutex
	mode   storage.Mode
}

// NewApp opens the local store, which must succeed, and tries the remote
// store within the configured timeout. Without a remote store the App runs
// in local-only mode.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	local, err := storage.OpenLocal(ctx, c.LocalDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.LocalDBPath, "error", err)
		return nil, err
	}

	remote := storage.NewRemoteConnector(c.RemoteDriver, c.RemoteDSN, c.RemoteConnectTimeout, logger)
	if err := remote.Connect(ctx); err != nil {
		if remote.Mode() == storage.ModeDisabled {
			logger.Debug(ctx, "no remote store configured, working in local-only mode")
		} else {
			logger.Warn(ctx, "working in local-only mode", "error", err)
		}
	}

	return newApp(c, logger, local, remote), nil
}

func newApp(c *config.Config, logger logging.Logger, local *storage.Local, remote *storage.RemoteConnector) *App {
	settings := services.NewSettingsService(local, remote, logger)
	return &App{
		config:    c,
		logger:    logger,
		local:     local,
		remote:    remote,
		session:   &tenancy.Holder{},
		entries:   services.NewEntryService(local, remote, logger, c.ListLimit),
		tags:      services.NewTagService(local, remote, logger),
		settings:  settings,
		sync:      services.NewSyncService(local, remote, logger, c.SyncBatchSize),
		retention: services.NewRetentionService(local, settings, logger),
		mode:      remote.Mode(),
	}
}

func (a *App) Close() error {
	return errors.Join(a.remote.Close(), a.local.Close())
}

func (a *App) Mode() storage.Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// setMode records mode and reports whether it changed.
func (a *App) setMode(ctx context.Context, mode storage.Mode) bool {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	a.logger.Info(ctx, "switched mode", "mode", string(mode))
	return true
}

func (a *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run logs tc in and runs the background tasks until ctx is cancelled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context, tc tenancy.Context, clip capture.Clipboard) error {
	if err := tc.Validate(); err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	a.initSignalHandler(ctx, cancelFunc)

	a.login(ctx, tc)
	defer a.session.Clear()

	a.logger.Info(ctx, "Starting clipkeeper...", "tenant", tc.TenantID, "mode", string(a.Mode()))

	watcher := capture.NewWatcher(clip, nil, a.entries, a.session, a.config.CapturePollInterval, a.logger)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.every(ctx, a.config.SyncInterval, a.syncNow)
	}()
	go func() {
		defer wg.Done()
		a.every(ctx, a.config.PurgeInterval, a.purgeNow)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()
	wg.Wait()

	a.logger.Info(context.Background(), "clipkeeper stopped")
	return nil
}

// login stores the session and bootstraps from the remote store when online.
func (a *App) login(ctx context.Context, tc tenancy.Context) {
	a.session.Set(tc)
	if a.Mode() == storage.ModeOnline {
		a.bootstrapNow(ctx)
	}
	a.purgeNow(ctx)
}

func (a *App) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) syncNow(ctx context.Context) {
	tc, ok := a.session.Current()
	if !ok || a.Mode() != storage.ModeOnline {
		return
	}
	if _, err := a.sync.Sync(ctx, tc); err != nil {
		a.logSyncError(ctx, "sync", err)
	}
}

func (a *App) bootstrapNow(ctx context.Context) {
	tc, ok := a.session.Current()
	if !ok {
		return
	}
	if _, err := a.sync.Bootstrap(ctx, tc); err != nil {
		a.logSyncError(ctx, "bootstrap", err)
	}
}

func (a *App) purgeNow(ctx context.Context) {
	tc, ok := a.session.Current()
	if !ok {
		return
	}
	if _, err := a.retention.Run(ctx, tc); err != nil {
		a.logger.Error(ctx, "retention failed", "error", err)
	}
}

func (a *App) logSyncError(ctx context.Context, op string, err error) {
	if errors.Is(err, common.ErrCloudUnavailable) {
		a.logger.Debug(ctx, op+" skipped", "error", err)
		return
	}
	a.logger.Error(ctx, op+" failed", "error", err)
}

// StartOnlineStatusWatcher pings the remote store every interval. Coming
// back online triggers a bootstrap followed by a sync.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	mode := a.remote.Ping(pingCtx)
	cancel()

	if a.setMode(ctx, mode) && mode == storage.ModeOnline {
		a.bootstrapNow(ctx)
		a.syncNow(ctx)
	}
}

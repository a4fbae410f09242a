package capture

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/services"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
)

// Recorder stores one capture. *services.EntryService implements it.
type Recorder interface {
	Capture(ctx context.Context, tc tenancy.Context, c services.Capture) (*models.ClipboardEntry, error)
}

// Watcher polls a Clipboard and records text that differs from the last
// text it saw.
type Watcher struct {
	clipboard Clipboard
	windows   WindowSource
	recorder  Recorder
	session   *tenancy.Holder
	interval  time.Duration
	logger    logging.Logger
	now       func() time.Time

	last string
}

func NewWatcher(clip Clipboard, windows WindowSource, recorder Recorder, session *tenancy.Holder, interval time.Duration, logger logging.Logger) *Watcher {
	if windows == nil {
		windows = NoopWindowSource{}
	}
	return &Watcher{
		clipboard: clip,
		windows:   windows,
		recorder:  recorder,
		session:   session,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.logger.Debug(ctx, "clipboard poll failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Poll reads the clipboard once and reports whether a new entry was stored.
// Empty text, text equal to the previous stored read and reads without a
// session are skipped. Text whose capture failed is tried again next poll.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	text, err := w.clipboard.Read(ctx)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" || text == w.last {
		return false, nil
	}

	tc, ok := w.session.Current()
	if !ok {
		return false, nil
	}
	app, title := w.windows.Foreground(ctx)
	e, err := w.recorder.Capture(ctx, tc, services.Capture{
		Content:      text,
		SourceApp:    app,
		SourceWindow: title,
		Timestamp:    w.now(),
	})
	if errors.Is(err, common.ErrDuplicate) {
		w.last = text
		return false, nil
	}
	if err != nil {
		return false, err
	}
	w.last = text
	w.logger.Debug(ctx, "clipboard captured", "entry", e.ID, "type", string(e.ContentType))
	return true, nil
}

package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/identity"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/entries"
	"github.com/dmitrijs2005/clipkeeper/internal/repositories/tags"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/stretchr/testify/require"
)

var (
	tcA = tenancy.New("user-a", "tenant-a", "a@example.com")
	tcB = tenancy.New("user-b", "tenant-b", "b@example.com")
)

// fakeRemoteEntries is an in-memory shared entry store keyed like the real
// one by (tenant, content hash).
type fakeRemoteEntries struct {
	entries.Remote

	mu       sync.Mutex
	rows     map[int64]*models.ClipboardEntry
	nextID   int64
	writes   int
	failHash map[string]error
	listErr  error
	onUpsert func(e *models.ClipboardEntry)
	deleted  []int64
}

func newFakeRemoteEntries() *fakeRemoteEntries {
	return &fakeRemoteEntries{rows: map[int64]*models.ClipboardEntry{}, failHash: map[string]error{}}
}

func (f *fakeRemoteEntries) Upsert(ctx context.Context, e *models.ClipboardEntry) (*models.ClipboardEntry, error) {
	if f.onUpsert != nil {
		f.onUpsert(e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failHash[e.ContentHash]; err != nil {
		return nil, err
	}
	f.writes++
	for _, r := range f.rows {
		if r.TenantID == e.TenantID && r.ContentHash == e.ContentHash {
			r.Content, r.ContentType = e.Content, e.ContentType
			r.SourceApp, r.SourceWindow = e.SourceApp, e.SourceWindow
			r.Timestamp, r.IsPinned = e.Timestamp, e.IsPinned
			if e.Tags != nil {
				r.Tags = append(models.TagList(nil), e.Tags...)
			}
			cp := *r
			return &cp, nil
		}
	}
	f.nextID++
	row := *e
	row.ID = f.nextID
	row.ServerID = nil
	row.SyncStatus = ""
	row.CreatedAt = time.Now().UTC()
	f.rows[row.ID] = &row
	cp := row
	return &cp, nil
}

// seed stores a row as if another device had pushed it.
func (f *fakeRemoteEntries) seed(tenantID, content string, tagList ...string) *models.ClipboardEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ts := time.Date(2026, 10, 1, 12, 0, 0, int(f.nextID), time.UTC)
	row := &models.ClipboardEntry{
		ID: f.nextID, TenantID: tenantID, Content: content,
		ContentType: models.ContentTypeText, ContentHash: identity.Hash(content),
		SourceApp: "other-device", Timestamp: ts, CreatedAt: ts,
	}
	if len(tagList) > 0 {
		row.Tags = models.TagList(tagList)
	}
	f.rows[row.ID] = row
	return row
}

func (f *fakeRemoteEntries) ListAll(ctx context.Context, tenantID string) ([]*models.ClipboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.ClipboardEntry
	for _, r := range f.rows {
		if r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemoteEntries) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.TenantID != tenantID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemoteEntries) count(tenantID string) int {
	rows, _ := f.ListAll(context.Background(), tenantID)
	return len(rows)
}

type fakeRemoteTags struct {
	tags.Remote

	mu     sync.Mutex
	rows   map[int64]*models.Tag
	nextID int64
	writes int
}

func newFakeRemoteTags() *fakeRemoteTags {
	return &fakeRemoteTags{rows: map[int64]*models.Tag{}}
}

func (f *fakeRemoteTags) Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for _, r := range f.rows {
		if r.TenantID == t.TenantID && strings.EqualFold(r.Name, t.Name) {
			r.Name, r.Color = t.Name, t.Color
			cp := *r
			return &cp, nil
		}
	}
	f.nextID++
	row := &models.Tag{ID: f.nextID, TenantID: t.TenantID, Name: t.Name, Color: t.Color,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	f.rows[row.ID] = row
	cp := *row
	return &cp, nil
}

func (f *fakeRemoteTags) ListAll(ctx context.Context, tenantID string) ([]*models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tag
	for _, r := range f.rows {
		if r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemoteTags) DeleteByID(ctx context.Context, tenantID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; !ok || r.TenantID != tenantID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRemoteSettings struct {
	mu     sync.Mutex
	rows   map[string]*models.TenantSettings
	writes int
}

func (f *fakeRemoteSettings) Get(ctx context.Context, tenantID, userID string) (*models.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[userID]
	if !ok || s.TenantID != tenantID {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRemoteSettings) Save(ctx context.Context, s *models.TenantSettings) (*models.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[string]*models.TenantSettings{}
	}
	f.writes++
	cp := *s
	cp.UpdatedAt = time.Now().UTC()
	f.rows[s.UserID] = &cp
	out := cp
	return &out, nil
}

// fakeSource toggles between online and offline.
type fakeSource struct {
	remote  *storage.Remote
	offline bool
}

func (f *fakeSource) Remote() (*storage.Remote, error) {
	if f.offline {
		return nil, common.ErrCloudUnavailable
	}
	return f.remote, nil
}

type env struct {
	local     *storage.Local
	entries   *fakeRemoteEntries
	tags      *fakeRemoteTags
	settings  *fakeRemoteSettings
	source    *fakeSource
	entrySvc  *EntryService
	tagSvc    *TagService
	setSvc    *SettingsService
	syncSvc   *SyncService
	retention *RetentionService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	local, err := storage.OpenLocal(context.Background(), storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	e := &env{
		local:    local,
		entries:  newFakeRemoteEntries(),
		tags:     newFakeRemoteTags(),
		settings: &fakeRemoteSettings{},
	}
	e.source = &fakeSource{remote: &storage.Remote{Entries: e.entries, Tags: e.tags, Settings: e.settings}}

	log := logging.Discard()
	e.entrySvc = NewEntryService(local, e.source, log, 100)
	e.tagSvc = NewTagService(local, e.source, log)
	e.setSvc = NewSettingsService(local, e.source, log)
	e.syncSvc = NewSyncService(local, e.source, log, 500)
	e.retention = NewRetentionService(local, e.setSvc, log)
	return e
}

func (e *env) capture(t *testing.T, tc tenancy.Context, text string) *models.ClipboardEntry {
	t.Helper()
	got, err := e.entrySvc.Capture(context.Background(), tc, Capture{Content: text, SourceApp: "editor"})
	require.NoError(t, err)
	return got
}

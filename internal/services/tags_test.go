package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTagName(t *testing.T) {
	got, err := NormalizeTagName("  work  ")
	require.NoError(t, err)
	assert.Equal(t, "work", got)

	_, err = NormalizeTagName(" \t")
	require.ErrorIs(t, err, common.ErrInvalidTagName)

	_, err = NormalizeTagName(strings.Repeat("я", models.MaxTagNameLength))
	require.NoError(t, err)

	_, err = NormalizeTagName(strings.Repeat("x", models.MaxTagNameLength+1))
	require.ErrorIs(t, err, common.ErrInvalidTagName)
}

func TestNormalizeTagColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: models.DefaultTagColor},
		{in: "#a1b2c3", want: "#A1B2C3"},
		{in: "A1B2C3", want: "#A1B2C3"},
		{in: "#abc", wantErr: true},
		{in: "red", wantErr: true},
		{in: "##A1B2C3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTagColor(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidTagColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagService_CreateAndClash(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tag, err := e.tagSvc.Create(ctx, tcA, "Work", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTagColor, tag.Color)

	_, err = e.tagSvc.Create(ctx, tcA, "WORK", "")
	require.ErrorIs(t, err, common.ErrDuplicate)

	_, err = e.tagSvc.Create(ctx, tcA, "other", "nope")
	require.ErrorIs(t, err, common.ErrInvalidTagColor)
}

func TestTagService_RenameRetagsEntries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	entry := e.capture(t, tcA, "draft")
	_, err := e.entrySvc.AssignTag(ctx, tcA, entry.ID, "todo")
	require.NoError(t, err)
	tag, err := e.tagSvc.Create(ctx, tcA, "done", "")
	require.NoError(t, err)

	todo, err := e.local.Tags().GetByName(ctx, tcA.TenantID, "todo")
	require.NoError(t, err)

	_, err = e.tagSvc.Update(ctx, tcA, todo.ID, "Done", "")
	require.ErrorIs(t, err, common.ErrDuplicate)

	renamed, err := e.tagSvc.Update(ctx, tcA, todo.ID, "later", "00ff00")
	require.NoError(t, err)
	assert.Equal(t, "later", renamed.Name)
	assert.Equal(t, "#00FF00", renamed.Color)
	assert.Equal(t, models.SyncStatusLocal, renamed.SyncStatus)

	got, err := e.entrySvc.Get(ctx, tcA, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"later"}, got.Tags)

	recolored, err := e.tagSvc.Update(ctx, tcA, tag.ID, "", "#123456")
	require.NoError(t, err)
	assert.Equal(t, "done", recolored.Name)
}

func TestTagService_DeleteStripsEntries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	one := e.capture(t, tcA, "one")
	two := e.capture(t, tcA, "two")
	for _, id := range []int64{one.ID, two.ID} {
		_, err := e.entrySvc.AssignTag(ctx, tcA, id, "tmp")
		require.NoError(t, err)
	}
	_, err := e.entrySvc.AssignTag(ctx, tcA, two.ID, "keep")
	require.NoError(t, err)

	_, err = e.syncSvc.Sync(ctx, tcA)
	require.NoError(t, err)

	usage, err := e.tagSvc.Usage(ctx, tcA)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "tmp", usage[0].Name)
	assert.Equal(t, 2, usage[0].Entries)

	tmp, err := e.local.Tags().GetByName(ctx, tcA.TenantID, "tmp")
	require.NoError(t, err)
	require.NoError(t, e.tagSvc.Delete(ctx, tcA, tmp.ID))

	got, err := e.entrySvc.Get(ctx, tcA, two.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"keep"}, got.Tags)

	got, err = e.entrySvc.Get(ctx, tcA, one.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	remote, err := e.tags.ListAll(ctx, tcA.TenantID)
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, "keep", remote[0].Name)
}

func TestTagService_NamesNeedingJSONEscapes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	entry := e.capture(t, tcA, "quarterly plan")
	_, err := e.entrySvc.AssignTag(ctx, tcA, entry.ID, "R&D")
	require.NoError(t, err)
	_, err = e.entrySvc.AssignTag(ctx, tcA, entry.ID, `a"b`)
	require.NoError(t, err)

	usage, err := e.tagSvc.Usage(ctx, tcA)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	for _, u := range usage {
		assert.Equal(t, 1, u.Entries, u.Name)
	}

	rd, err := e.local.Tags().GetByName(ctx, tcA.TenantID, "r&d")
	require.NoError(t, err)
	_, err = e.tagSvc.Update(ctx, tcA, rd.ID, "R&D <core>", "")
	require.NoError(t, err)

	got, err := e.entrySvc.Get(ctx, tcA, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TagList{`a"b`, "R&D <core>"}, got.Tags)

	quoted, err := e.local.Tags().GetByName(ctx, tcA.TenantID, `a"b`)
	require.NoError(t, err)
	require.NoError(t, e.tagSvc.Delete(ctx, tcA, quoted.ID))

	got, err = e.entrySvc.Get(ctx, tcA, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"R&D <core>"}, got.Tags)
}

func TestTagService_NonASCIICaseClash(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.tagSvc.Create(ctx, tcA, "Café", "")
	require.NoError(t, err)

	_, err = e.tagSvc.Create(ctx, tcA, "CAFÉ", "")
	require.ErrorIs(t, err, common.ErrDuplicate)

	entry := e.capture(t, tcA, "menu")
	got, err := e.entrySvc.AssignTag(ctx, tcA, entry.ID, "CAFÉ")
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"Café"}, got.Tags, "existing spelling is reused")
}

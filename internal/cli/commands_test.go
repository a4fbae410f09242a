package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// sessionArgs returns the flags for a file-backed local store owned by tenant.
func sessionArgs(db, tenant string) []string {
	return []string{"--db", db, "--user", "u-" + tenant, "--tenant", tenant, "--log-level", "error"}
}

func run(t *testing.T, base []string, args ...string) string {
	t.Helper()
	out, err := execute(t, append(append([]string{}, base...), args...)...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestCommands_RequireTenant(t *testing.T) {
	_, err := execute(t, "--db", storage.MemoryPath, "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoTenant)
}

func TestCommands_InvalidID(t *testing.T) {
	_, err := execute(t, append(sessionArgs(storage.MemoryPath, "acme"), "pin", "abc")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid id "abc"`)
}

func TestCommands_EntryLifecycle(t *testing.T) {
	base := sessionArgs(filepath.Join(t.TempDir(), "clip.db"), "acme")

	assert.Equal(t, "No entries.\n", run(t, base, "list"))
	assert.Equal(t, "Stored entry 1 (url).\n", run(t, base, "add", "https://example.com"))
	assert.Equal(t, "Stored entry 2 (text).\n", run(t, base, "add", "hello", "world"))
	assert.Equal(t, "Already stored.\n", run(t, base, "add", "hello world"))

	assert.Equal(t, "Pinned entry 1.\n", run(t, base, "pin", "1"))
	assert.Equal(t, "Entry 2 tags: work\n", run(t, base, "tag", "assign", "2", "work"))

	out := run(t, base, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "2 "), "newest first: %q", lines[1])
	assert.Contains(t, lines[1], "work")
	assert.Contains(t, lines[2], "*")

	out = run(t, base, "search", "hello")
	assert.Contains(t, out, "hello world")
	assert.NotContains(t, out, "example.com")

	out = run(t, base, "list", "--tag", "WORK")
	assert.Contains(t, out, "hello world")

	assert.Equal(t, "Updated entry 2.\n", run(t, base, "edit", "2", "hello", "again"))
	out = run(t, base, "show", "2")
	assert.Contains(t, out, "hello again")
	assert.Contains(t, out, "local (server id -)")

	out = run(t, base, "tag", "list")
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "#6B7280")

	assert.Equal(t, "Purged 0 entries.\n", run(t, base, "purge", "--all", "--keep-tagged"))
	assert.Equal(t, "Purged 0 entries.\n", run(t, base, "purge"))
	assert.Equal(t, "Deleted entry 2.\n", run(t, base, "delete", "2"))

	out = run(t, base, "list")
	assert.Contains(t, out, "example.com")
	assert.NotContains(t, out, "hello")
}

func TestCommands_TenantsAreIsolated(t *testing.T) {
	db := filepath.Join(t.TempDir(), "clip.db")

	run(t, sessionArgs(db, "acme"), "add", "acme secret")
	out := run(t, sessionArgs(db, "globex"), "list")
	assert.Equal(t, "No entries.\n", out)

	_, err := execute(t, append(sessionArgs(db, "globex"), "show", "1")...)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCommands_TagUpdateAndDelete(t *testing.T) {
	base := sessionArgs(filepath.Join(t.TempDir(), "clip.db"), "acme")

	assert.Equal(t, "Created tag 1 \"work\" (#3B82F6).\n", run(t, base, "tag", "create", "work", "--color", "3b82f6"))
	_, err := execute(t, append(base, "tag", "create", "Work")...)
	assert.ErrorIs(t, err, common.ErrDuplicate)

	run(t, base, "add", "note")
	run(t, base, "tag", "assign", "1", "work")

	assert.Equal(t, "Updated tag 1 \"office\" (#3B82F6).\n", run(t, base, "tag", "update", "1", "--name", "office"))
	assert.Contains(t, run(t, base, "show", "1"), "office")

	assert.Equal(t, "Entry 1 tags: -\n", run(t, base, "tag", "remove", "1", "office"))
	assert.Equal(t, "Deleted tag 1.\n", run(t, base, "tag", "delete", "1"))
	assert.Equal(t, "No tags.\n", run(t, base, "tag", "list"))
}

func TestCommands_Settings(t *testing.T) {
	base := sessionArgs(filepath.Join(t.TempDir(), "clip.db"), "acme")

	out := run(t, base, "settings", "get")
	assert.Contains(t, out, "Never")

	out = run(t, base, "settings", "set", "--cadence", "weekly", "--retain-tags")
	assert.Contains(t, out, "Every week")
	assert.Contains(t, out, "Keep tagged:    yes")

	out = run(t, base, "settings", "set", "--enabled=false")
	assert.Contains(t, out, "Never")
	assert.Contains(t, out, "Keep tagged:    yes")

	_, err := execute(t, append(base, "settings", "set", "--cadence", "hourly")...)
	assert.ErrorIs(t, err, common.ErrInvalidCadence)
}

func TestCommands_SyncWithoutRemote(t *testing.T) {
	base := sessionArgs(storage.MemoryPath, "acme")

	_, err := execute(t, append(base, "sync")...)
	assert.ErrorIs(t, err, common.ErrCloudUnavailable)

	_, err = execute(t, append(base, "bootstrap")...)
	assert.ErrorIs(t, err, common.ErrCloudUnavailable)
}

func TestCommands_Token(t *testing.T) {
	secret := "s3cret"

	_, err := execute(t, "--user", "u1", "--tenant", "acme", "token")
	require.Error(t, err)

	out, err := execute(t, "--session-secret", secret, "--user", "u1", "--tenant", "acme", "--email", "a@b.c", "token")
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	tc, err := tenancy.ParseToken(token, []byte(secret))
	require.NoError(t, err)
	assert.Equal(t, tenancy.New("u1", "acme", "a@b.c"), tc)

	db := filepath.Join(t.TempDir(), "clip.db")
	out, err = execute(t, "--db", db, "--session-secret", secret, "--token", token, "add", "via token")
	require.NoError(t, err)
	assert.Equal(t, "Stored entry 1 (text).\n", out)

	_, err = execute(t, "--db", db, "--session-secret", "other", "--token", token, "list")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCommands_PurgeFlagsExclusive(t *testing.T) {
	_, err := execute(t, append(sessionArgs(storage.MemoryPath, "acme"), "purge", "--all", "--older-than", "1h")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: ")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()
	assert.Equal(t, "clipkeeper.db", c.LocalDBPath)
	assert.Equal(t, "pgx", c.RemoteDriver)
	assert.Equal(t, 40*time.Second, c.RemoteConnectTimeout)
	assert.Equal(t, 500, c.SyncBatchSize)
	assert.Equal(t, 100, c.ListLimit)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(viper.New(), newFlags(t))
	require.NoError(t, err)

	want := defaults()
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Layering(t *testing.T) {
	path := writeJSON(t, `{
		"local_db_path": "/var/lib/clipkeeper/history.db",
		"remote_dsn": "postgres://json",
		"sync_interval": "5m",
		"purge_interval": 7200000000000,
		"list_limit": 20
	}`)
	t.Setenv("CLIPKEEPER_REMOTE_DSN", "postgres://env")
	t.Setenv("CLIPKEEPER_LOG_LEVEL", "debug")

	fs := newFlags(t, "-c", path, "--log-level", "warn", "--batch-size", "50", "--poll-interval", "250ms")
	cfg, err := Load(viper.New(), fs)
	require.NoError(t, err)

	want := defaults()
	want.LocalDBPath = "/var/lib/clipkeeper/history.db"
	want.RemoteDSN = "postgres://env"
	want.SyncInterval = 5 * time.Minute
	want.PurgeInterval = 2 * time.Hour
	want.ListLimit = 20
	want.LogLevel = "warn"
	want.SyncBatchSize = 50
	want.CapturePollInterval = 250 * time.Millisecond

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := writeJSON(t, `{"remote_driver": "postgres", "online_check_interval": "30s"}`)
	t.Setenv("CLIPKEEPER_CONFIG", path)

	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.RemoteDriver)
	assert.Equal(t, 30*time.Second, cfg.OnlineCheckInterval)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(viper.New(), newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.json")))
		require.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := Load(viper.New(), newFlags(t, "-c", writeJSON(t, `{"sync_interval": true}`)))
		require.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(viper.New(), newFlags(t, "--remote-driver", "mysql", "--sync-interval", "0s", "--db", " "))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown remote driver "mysql"`)
		assert.Contains(t, err.Error(), "sync interval must be positive")
		assert.Contains(t, err.Error(), "local db path is required")
	})
}

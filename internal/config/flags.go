package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CLIPKEEPER"

// Flag names registered by RegisterFlags.
const (
	FlagConfig              = "config"
	FlagDB                  = "db"
	FlagRemoteDSN           = "remote-dsn"
	FlagRemoteDriver        = "remote-driver"
	FlagConnectTimeout      = "connect-timeout"
	FlagOnlineCheckInterval = "online-check-interval"
	FlagSyncInterval        = "sync-interval"
	FlagPurgeInterval       = "purge-interval"
	FlagPollInterval        = "poll-interval"
	FlagBatchSize           = "batch-size"
	FlagListLimit           = "list-limit"
	FlagLogLevel            = "log-level"
	FlagLogFormat           = "log-format"
	FlagSessionSecret       = "session-secret"
)

// binding ties a viper key to its flag.
type binding struct {
	key  string
	flag string
}

var bindings = []binding{
	{"config", FlagConfig},
	{"local.db_path", FlagDB},
	{"remote.dsn", FlagRemoteDSN},
	{"remote.driver", FlagRemoteDriver},
	{"remote.connect_timeout", FlagConnectTimeout},
	{"online_check_interval", FlagOnlineCheckInterval},
	{"sync.interval", FlagSyncInterval},
	{"purge.interval", FlagPurgeInterval},
	{"capture.poll_interval", FlagPollInterval},
	{"sync.batch_size", FlagBatchSize},
	{"list.limit", FlagListLimit},
	{"log.level", FlagLogLevel},
	{"log.format", FlagLogFormat},
	{"session.secret", FlagSessionSecret},
}

// RegisterFlags adds the configuration flags to fs with defaults taken from
// Config.LoadDefaults.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to JSON configuration file")
	fs.String(FlagDB, d.LocalDBPath, "local SQLite database path")
	fs.String(FlagRemoteDSN, d.RemoteDSN, "remote PostgreSQL DSN (empty for local-only)")
	fs.String(FlagRemoteDriver, d.RemoteDriver, "remote database/sql driver: pgx or postgres")
	fs.Duration(FlagConnectTimeout, d.RemoteConnectTimeout, "remote connect timeout")
	fs.Duration(FlagOnlineCheckInterval, d.OnlineCheckInterval, "remote reachability check interval")
	fs.Duration(FlagSyncInterval, d.SyncInterval, "background sync interval")
	fs.Duration(FlagPurgeInterval, d.PurgeInterval, "background retention interval")
	fs.Duration(FlagPollInterval, d.CapturePollInterval, "clipboard poll interval")
	fs.Int(FlagBatchSize, d.SyncBatchSize, "rows pushed per sync pass")
	fs.Int(FlagListLimit, d.ListLimit, "default number of entries listed")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (auto, text, json, zap)")
	fs.String(FlagSessionSecret, d.SessionSecret, "secret for signing session tokens")
}

// Load builds a Config from defaults, the JSON file, the environment and fs.
// fs may be nil, in which case only defaults, file and environment apply.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, b := range bindings {
			f := fs.Lookup(b.flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", b.flag, err)
			}
		}
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	if path := v.GetString("config"); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}

	overlay(v, cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overlay copies keys set through the environment or explicit flags.
func overlay(v *viper.Viper, cfg *Config) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("local.db_path", &cfg.LocalDBPath)
	str("remote.dsn", &cfg.RemoteDSN)
	str("remote.driver", &cfg.RemoteDriver)
	str("log.level", &cfg.LogLevel)
	str("log.format", &cfg.LogFormat)
	str("session.secret", &cfg.SessionSecret)

	dur := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}
	dur("remote.connect_timeout", &cfg.RemoteConnectTimeout)
	dur("online_check_interval", &cfg.OnlineCheckInterval)
	dur("sync.interval", &cfg.SyncInterval)
	dur("purge.interval", &cfg.PurgeInterval)
	dur("capture.poll_interval", &cfg.CapturePollInterval)

	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	num("sync.batch_size", &cfg.SyncBatchSize)
	num("list.limit", &cfg.ListLimit)
}

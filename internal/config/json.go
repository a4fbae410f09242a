package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given as strings like "3s" or as integer nanoseconds. Absent fields
// keep their current value.
type JsonConfig struct {
	LocalDBPath          *string         `json:"local_db_path"`
	RemoteDSN            *string         `json:"remote_dsn"`
	RemoteDriver         *string         `json:"remote_driver"`
	RemoteConnectTimeout *timex.Duration `json:"remote_connect_timeout"`
	OnlineCheckInterval  *timex.Duration `json:"online_check_interval"`
	SyncInterval         *timex.Duration `json:"sync_interval"`
	PurgeInterval        *timex.Duration `json:"purge_interval"`
	CapturePollInterval  *timex.Duration `json:"capture_poll_interval"`
	SyncBatchSize        *int            `json:"sync_batch_size"`
	ListLimit            *int            `json:"list_limit"`
	LogLevel             *string         `json:"log_level"`
	LogFormat            *string         `json:"log_format"`
	SessionSecret        *string         `json:"session_secret"`
}

// parseJson overlays cfg with the fields present in the JSON file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.LocalDBPath, jc.LocalDBPath)
	setString(&cfg.RemoteDSN, jc.RemoteDSN)
	setString(&cfg.RemoteDriver, jc.RemoteDriver)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.SessionSecret, jc.SessionSecret)

	for dst, src := range map[*time.Duration]*timex.Duration{
		&cfg.RemoteConnectTimeout: jc.RemoteConnectTimeout,
		&cfg.OnlineCheckInterval:  jc.OnlineCheckInterval,
		&cfg.SyncInterval:         jc.SyncInterval,
		&cfg.PurgeInterval:        jc.PurgeInterval,
		&cfg.CapturePollInterval:  jc.CapturePollInterval,
	} {
		if src != nil {
			*dst = src.Duration
		}
	}

	if jc.SyncBatchSize != nil {
		cfg.SyncBatchSize = *jc.SyncBatchSize
	}
	if jc.ListLimit != nil {
		cfg.ListLimit = *jc.ListLimit
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the clipkeeper daemon and commands.
type Config struct {
	LocalDBPath string

	// RemoteDSN is empty for local-only operation.
	RemoteDSN            string
	RemoteDriver         string
	RemoteConnectTimeout time.Duration

	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	PurgeInterval       time.Duration
	CapturePollInterval time.Duration

	SyncBatchSize int
	ListLimit     int

	LogLevel  string
	LogFormat string

	// SessionSecret signs and verifies session tokens.
	SessionSecret string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "clipkeeper.db"
	c.RemoteDSN = ""
	c.RemoteDriver = "pgx"
	c.RemoteConnectTimeout = 40 * time.Second
	c.OnlineCheckInterval = 15 * time.Second
	c.SyncInterval = 60 * time.Second
	c.PurgeInterval = time.Hour
	c.CapturePollInterval = time.Second
	c.SyncBatchSize = 500
	c.ListLimit = 100
	c.LogLevel = "info"
	c.LogFormat = "auto"
	c.SessionSecret = ""
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.LocalDBPath) == "" {
		errs = append(errs, errors.New("local db path is required"))
	}
	switch c.RemoteDriver {
	case "pgx", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown remote driver %q", c.RemoteDriver))
	}
	for name, d := range map[string]time.Duration{
		"remote connect timeout": c.RemoteConnectTimeout,
		"online check interval":  c.OnlineCheckInterval,
		"sync interval":          c.SyncInterval,
		"purge interval":         c.PurgeInterval,
		"capture poll interval":  c.CapturePollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.SyncBatchSize <= 0 {
		errs = append(errs, errors.New("sync batch size must be positive"))
	}
	if c.ListLimit <= 0 {
		errs = append(errs, errors.New("list limit must be positive"))
	}
	return errors.Join(errs...)
}

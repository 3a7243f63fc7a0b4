package config

import "time"

// Config provides read-only access to versionctl configuration.
// The app layer depends on this interface, never on how settings are loaded.
type Config interface {
	// Core settings
	Home() string         // Base directory (VERSIONCTL_HOME)
	DatabasePath() string // SQLite database file

	// Logging
	LogLevel() string  // debug, info, warn, error
	LogFormat() string // console or json

	// Event log
	EventLogPath() string // JSON-lines event file; empty disables the file sink
	EventBuffer() int     // Async event queue size

	// Versioning policy
	SyncWithPreservation() bool // Backfill version records up to the preserved version

	// Preservation registry
	PreservationURL() string // Empty selects the local registry table
	PreservationTimeout() time.Duration
	BreakerFailures() int
	BreakerTimeout() time.Duration

	// Metrics
	MetricsEnabled() bool

	// Metadata
	ConfigSource() string // "yaml" or "default"
	SettingPath() string  // Path to setting.yaml if loaded from file
}

// AppConfig is the concrete implementation of Config
type AppConfig struct {
	home         string
	databasePath string

	logLevel  string
	logFormat string

	eventLogPath string
	eventBuffer  int

	syncWithPreservation bool

	preservationURL        string
	preservationTimeoutSec int
	breakerFailures        int
	breakerTimeoutSec      int

	metricsEnabled bool

	configSource string
	settingPath  string
}

// Values carries the resolved settings into NewAppConfig
type Values struct {
	Home                   string
	DatabasePath           string
	LogLevel               string
	LogFormat              string
	EventLogPath           string
	EventBuffer            int
	SyncWithPreservation   bool
	PreservationURL        string
	PreservationTimeoutSec int
	BreakerFailures        int
	BreakerTimeoutSec      int
	MetricsEnabled         bool
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(v Values, configSource, settingPath string) *AppConfig {
	return &AppConfig{
		home:                   v.Home,
		databasePath:           v.DatabasePath,
		logLevel:               v.LogLevel,
		logFormat:              v.LogFormat,
		eventLogPath:           v.EventLogPath,
		eventBuffer:            v.EventBuffer,
		syncWithPreservation:   v.SyncWithPreservation,
		preservationURL:        v.PreservationURL,
		preservationTimeoutSec: v.PreservationTimeoutSec,
		breakerFailures:        v.BreakerFailures,
		breakerTimeoutSec:      v.BreakerTimeoutSec,
		metricsEnabled:         v.MetricsEnabled,
		configSource:           configSource,
		settingPath:            settingPath,
	}
}

func (c *AppConfig) Home() string         { return c.home }
func (c *AppConfig) DatabasePath() string { return c.databasePath }

func (c *AppConfig) LogLevel() string  { return c.logLevel }
func (c *AppConfig) LogFormat() string { return c.logFormat }

func (c *AppConfig) EventLogPath() string { return c.eventLogPath }
func (c *AppConfig) EventBuffer() int     { return c.eventBuffer }

func (c *AppConfig) SyncWithPreservation() bool { return c.syncWithPreservation }

func (c *AppConfig) PreservationURL() string { return c.preservationURL }
func (c *AppConfig) PreservationTimeout() time.Duration {
	return time.Duration(c.preservationTimeoutSec) * time.Second
}
func (c *AppConfig) BreakerFailures() int { return c.breakerFailures }
func (c *AppConfig) BreakerTimeout() time.Duration {
	return time.Duration(c.breakerTimeoutSec) * time.Second
}

func (c *AppConfig) MetricsEnabled() bool { return c.metricsEnabled }

func (c *AppConfig) ConfigSource() string { return c.configSource }
func (c *AppConfig) SettingPath() string  { return c.settingPath }

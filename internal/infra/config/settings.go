package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sul-dlss/dor-services-app-sub001/internal/app/config"
)

// SettingFile is the name of the settings file inside the base directory
const SettingFile = "setting.yaml"

// RawSettings represents the structure of setting.yaml.
// Pointer fields distinguish an absent key from a zero value.
type RawSettings struct {
	// Core settings
	DatabasePath *string `yaml:"database_path"`

	// Logging
	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`

	// Event log
	EventLogPath *string `yaml:"event_log_path"`
	EventBuffer  *int    `yaml:"event_buffer"`

	Versioning   VersioningSettings   `yaml:"versioning"`
	Preservation PreservationSettings `yaml:"preservation"`
	Metrics      MetricsSettings      `yaml:"metrics"`
}

// VersioningSettings holds lifecycle policy switches
type VersioningSettings struct {
	SyncWithPreservation *bool `yaml:"sync_with_preservation"`
}

// PreservationSettings configures the preservation registry client
type PreservationSettings struct {
	URL               *string `yaml:"url"`
	TimeoutSec        *int    `yaml:"timeout_sec"`
	BreakerFailures   *int    `yaml:"breaker_failures"`
	BreakerTimeoutSec *int    `yaml:"breaker_timeout_sec"`
}

// MetricsSettings toggles metrics collection
type MetricsSettings struct {
	Enabled *bool `yaml:"enabled"`
}

// LoadSettings loads configuration from <baseDir>/setting.yaml.
// Priority: setting.yaml > defaults
func LoadSettings(fs afero.Fs, baseDir string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	yamlPath := filepath.Join(baseDir, SettingFile)
	data, err := afero.ReadFile(fs, yamlPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", yamlPath, err)
		}
		configSource = "yaml"
		settingPath = yamlPath
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", yamlPath, err)
	}

	applyDefaults(settings, baseDir)
	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", yamlPath, err)
	}

	return buildAppConfig(settings, baseDir, configSource, settingPath), nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings, baseDir string) {
	if settings.DatabasePath == nil {
		v := filepath.Join(baseDir, "versionctl.db")
		settings.DatabasePath = &v
	}

	if settings.LogLevel == nil {
		v := "warn"
		settings.LogLevel = &v
	}
	if settings.LogFormat == nil {
		v := "console"
		settings.LogFormat = &v
	}

	if settings.EventLogPath == nil {
		v := ""
		settings.EventLogPath = &v
	}
	if settings.EventBuffer == nil {
		v := 64
		settings.EventBuffer = &v
	}

	if settings.Versioning.SyncWithPreservation == nil {
		v := false
		settings.Versioning.SyncWithPreservation = &v
	}

	p := &settings.Preservation
	if p.URL == nil {
		v := ""
		p.URL = &v
	}
	if p.TimeoutSec == nil {
		v := 10
		p.TimeoutSec = &v
	}
	if p.BreakerFailures == nil {
		v := 5
		p.BreakerFailures = &v
	}
	if p.BreakerTimeoutSec == nil {
		v := 30
		p.BreakerTimeoutSec = &v
	}

	if settings.Metrics.Enabled == nil {
		v := false
		settings.Metrics.Enabled = &v
	}
}

func validate(settings *RawSettings) error {
	switch strings.ToLower(*settings.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", *settings.LogFormat)
	}
	if *settings.EventBuffer < 1 {
		return fmt.Errorf("event_buffer must be positive, got %d", *settings.EventBuffer)
	}
	if *settings.Preservation.TimeoutSec < 1 {
		return fmt.Errorf("preservation.timeout_sec must be positive, got %d", *settings.Preservation.TimeoutSec)
	}
	if *settings.Preservation.BreakerFailures < 1 {
		return fmt.Errorf("preservation.breaker_failures must be positive, got %d", *settings.Preservation.BreakerFailures)
	}
	return nil
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, baseDir, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(config.Values{
		Home:                   baseDir,
		DatabasePath:           *settings.DatabasePath,
		LogLevel:               *settings.LogLevel,
		LogFormat:              strings.ToLower(*settings.LogFormat),
		EventLogPath:           *settings.EventLogPath,
		EventBuffer:            *settings.EventBuffer,
		SyncWithPreservation:   *settings.Versioning.SyncWithPreservation,
		PreservationURL:        *settings.Preservation.URL,
		PreservationTimeoutSec: *settings.Preservation.TimeoutSec,
		BreakerFailures:        *settings.Preservation.BreakerFailures,
		BreakerTimeoutSec:      *settings.Preservation.BreakerTimeoutSec,
		MetricsEnabled:         *settings.Metrics.Enabled,
	}, configSource, settingPath)
}

// CreateDefaultSettings renders a default setting.yaml for baseDir
func CreateDefaultSettings(baseDir string) []byte {
	settings := &RawSettings{}
	applyDefaults(settings, baseDir)

	data, _ := yaml.Marshal(settings)
	return data
}

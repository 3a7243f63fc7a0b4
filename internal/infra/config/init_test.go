package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultSettings(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := WriteDefaultSettings(fs, "home", false)
	require.NoError(t, err)
	assert.Equal(t, "home/"+SettingFile, path)

	cfg, err := LoadSettings(fs, "home")
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.ConfigSource())

	// no temp files left behind
	entries, err := afero.ReadDir(fs, "home")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteDefaultSettings_Existing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "home/"+SettingFile, []byte("log_level: debug\n"), 0o644))

	_, err := WriteDefaultSettings(fs, "home", false)
	assert.ErrorIs(t, err, ErrSettingsExist)

	data, err := afero.ReadFile(fs, "home/"+SettingFile)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))

	_, err = WriteDefaultSettings(fs, "home", true)
	require.NoError(t, err)
	cfg, err := LoadSettings(fs, "home")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel())
}

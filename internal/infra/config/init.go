package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrSettingsExist is returned by WriteDefaultSettings when setting.yaml is
// already present and force is not set.
var ErrSettingsExist = errors.New("settings file already exists")

// WriteDefaultSettings writes a default setting.yaml into baseDir and
// returns its path. The file is written to a temp file and renamed into place.
func WriteDefaultSettings(fs afero.Fs, baseDir string, force bool) (string, error) {
	path := filepath.Join(baseDir, SettingFile)

	if !force {
		if _, err := fs.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrSettingsExist, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return path, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if err := fs.MkdirAll(baseDir, 0o755); err != nil {
		return path, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}

	tmp, err := afero.TempFile(fs, baseDir, ".setting-*")
	if err != nil {
		return path, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer fs.Remove(tmpPath)

	if _, err := tmp.Write(CreateDefaultSettings(baseDir)); err != nil {
		tmp.Close()
		return path, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return path, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return path, fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return path, nil
}

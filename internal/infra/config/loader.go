package config

import (
	"os"
	"strings"
)

// HomeEnv names the environment variable that points at the base directory
const HomeEnv = "VERSIONCTL_HOME"

// DefaultHome is used when HomeEnv is unset
const DefaultHome = ".versionctl"

// ResolveHome returns the base directory holding setting.yaml.
// An explicit flag value wins over the environment.
func ResolveHome(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(HomeEnv)); v != "" {
		return v
	}
	return DefaultHome
}

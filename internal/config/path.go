// Package config translates the loaded viper configuration into typed
// settings for the rest of the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and $VAR environment variables in a file path, so
// database paths in the config file can be written portably.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath returns the configured SQLite path, falling back to the
// default data directory.
func DatabasePath(configured string) string {
	if configured == "" {
		configured = "~/.local/share/sage/sage.db"
	}
	return ExpandPath(configured)
}

// Package paths resolves the directories and files fieldgate keeps on disk.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the fieldgate data directory, creating it if needed. The
// FIELDGATE_DIR environment variable overrides the default of ~/.fieldgate.
func Dir() (string, error) {
	var dir string
	if envDir := os.Getenv("FIELDGATE_DIR"); envDir != "" {
		dir = envDir
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".fieldgate")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create fieldgate directory: %w", err)
	}
	return dir, nil
}

// ToolsDir returns the directory holding scripted tool definitions,
// creating it if needed.
func ToolsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	toolsDir := filepath.Join(dir, "tools")
	if err := os.MkdirAll(toolsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tools directory: %w", err)
	}
	return toolsDir, nil
}

// ConfigPath returns the full path to the config.json configuration file.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultDatabasePath returns the default location of the SQLite database.
func DefaultDatabasePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fieldgate.db"), nil
}

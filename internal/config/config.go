// Package config loads the fieldgate server configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dslh/mcp-fieldgate/internal/paths"
)

// DefaultListen is the address served when the config does not set one.
const DefaultListen = ":8737"

// Config is the full fieldgate configuration.
type Config struct {
	// Listen is the address the HTTP transport binds to.
	Listen string `json:"listen,omitempty"`
	// Database is the path of the SQLite database backing the built-in
	// tools.
	Database string `json:"database,omitempty"`
	// RulesFile optionally points at a JSON parameter-categorization rule
	// table that replaces the built-in one.
	RulesFile string `json:"rulesFile,omitempty"`
}

// Load reads and parses a configuration file, expanding ${VAR} environment
// references in all string values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	config.Listen = expandString(config.Listen)
	config.Database = expandString(config.Database)
	config.RulesFile = expandString(config.RulesFile)
	return &config, nil
}

// LoadDefault loads the configuration from the fieldgate directory, falling
// back to defaults when no config file exists, and fills in any unset
// values.
func LoadDefault() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if _, err := os.Stat(configPath); err == nil {
		config, err = Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.Database == "" {
		config.Database, err = paths.DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for basic validity.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandString expands ${VAR} environment variable references in a string.
func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

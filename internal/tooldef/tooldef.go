// Package tooldef loads operator-authored scripted tool definitions from
// disk. Definitions are read once at startup; the registry they populate is
// immutable for the process lifetime, so there is no save or delete path
// here; authoring happens by editing the files directly.
package tooldef

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Definition describes one scripted tool: its catalog entry plus the
// Starlark body that implements it.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
	Code        string                 `json:"code"`
}

// Validate checks a definition for basic soundness.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if len(d.Name) > 100 {
		return fmt.Errorf("tool name too long (max 100 characters)")
	}
	if strings.ContainsAny(d.Name, "/\\:*?\"<>| ") || strings.Contains(d.Name, "..") {
		return fmt.Errorf("tool name contains invalid characters: %s", d.Name)
	}
	if d.Code == "" {
		return fmt.Errorf("tool %s has no code", d.Name)
	}
	return nil
}

// Load reads and validates a single definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool file: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse tool file: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ListDir returns all definitions in dir, sorted by filename. A missing
// directory yields an empty list; malformed files are logged and skipped so
// one bad definition cannot block startup.
func ListDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tools directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var defs []*Definition
	for _, name := range names {
		def, err := Load(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Warning: skipping tool definition %s: %v", name, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListScripts returns the YAML script files in dir sorted by name
func ListScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts directory: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if !entry.IsDir() && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			scripts = append(scripts, filepath.Join(dir, entry.Name()))
		}
	}

	if len(scripts) == 0 {
		return nil, fmt.Errorf("no script files found in %s", dir)
	}

	sort.Strings(scripts)
	return scripts, nil
}

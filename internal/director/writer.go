package director

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed scripts/*.yaml
var embedded embed.FS

// WriteScript writes a script to a YAML file
func WriteScript(script *Script, path string) error {
	data, err := yaml.Marshal(script)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScript reads and validates a script from a YAML file
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScript(data, path)
}

func parseScript(data []byte, name string) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &script, nil
}

// LoadScripts reads every script in dir, ordered by file name. An empty dir
// loads the built-in scripts.
func LoadScripts(dir string) ([]*Script, error) {
	if dir == "" {
		return loadFS(embedded, "scripts")
	}
	paths, err := ListScripts(dir)
	if err != nil {
		return nil, err
	}
	scripts := make([]*Script, 0, len(paths))
	for _, p := range paths {
		s, err := ReadScript(p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

func loadFS(fsys fs.FS, dir string) ([]*Script, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var scripts []*Script
	for _, e := range entries {
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, err
		}
		s, err := parseScript(data, e.Name())
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// ExportScripts copies the built-in scripts into dir so they can be edited and
// loaded back with LoadScripts.
func ExportScripts(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(embedded, "scripts")
	if err != nil {
		return nil, err
	}
	var written []string
	for _, e := range entries {
		data, err := fs.ReadFile(embedded, "scripts/"+e.Name())
		if err != nil {
			return nil, err
		}
		dst := filepath.Join(dir, e.Name())
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return nil, err
		}
		written = append(written, dst)
	}
	sort.Strings(written)
	return written, nil
}

// FilterBatch keeps the scripts of one batch; an empty batch keeps all.
func FilterBatch(scripts []*Script, batch string) []*Script {
	if batch == "" {
		return scripts
	}
	var out []*Script
	for _, s := range scripts {
		if s.Batch == batch {
			out = append(out, s)
		}
	}
	return out
}

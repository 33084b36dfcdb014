package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageSource serves assets from a local directory instead of the network.
// Files are matched by cache name: "projecteur_main" resolves to
// projecteur_main.jpg, .jpeg or .png.
type ImageSource struct {
	dir   string
	paths []string
}

func NewImageSource(dir string) (*ImageSource, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return &ImageSource{dir: dir, paths: paths}, nil
}

func (s *ImageSource) Count() int {
	return len(s.paths)
}

// Fetch ignores the URL and looks the asset up by name.
func (s *ImageSource) Fetch(_ context.Context, _ string, name string) (string, error) {
	for _, p := range s.paths {
		base := filepath.Base(p)
		if strings.TrimSuffix(base, filepath.Ext(base)) == name && validImage(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found in %s", ErrAssetUnavailable, name, s.dir)
}

package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ErrAssetUnavailable is returned when an asset cannot be produced. Callers
// skip the scene that depends on it.
var ErrAssetUnavailable = errors.New("asset unavailable")

// Fetcher turns a remote image URL into a local file path.
type Fetcher interface {
	Fetch(ctx context.Context, url, name string) (string, error)
}

// LoadImage decodes the image file at path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// validImage reports whether the file at path has a decodable image header.
func validImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	return err == nil && cfg.Width > 0 && cfg.Height > 0
}

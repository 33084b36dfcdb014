package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPFetcher downloads images once and memoizes them on disk.
type HTTPFetcher struct {
	client   *http.Client
	cacheDir string
	logger   zerolog.Logger
}

func NewHTTPFetcher(cacheDir string, timeout time.Duration, logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		logger:   logger.With().Str("component", "fetch").Logger(),
	}
}

// CachePath is where the asset for (rawURL, name) lives. The URL hash is part of
// the key so that a changed upstream URL never serves the old bytes.
func (f *HTTPFetcher) CachePath(rawURL, name string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(f.cacheDir, fmt.Sprintf("%s-%s%s", sanitizeName(name), hex.EncodeToString(sum[:6]), urlExt(rawURL)))
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, name string) (string, error) {
	dst := f.CachePath(rawURL, name)
	log := f.logger.With().Str("asset", name).Logger()

	if _, err := os.Stat(dst); err == nil {
		if validImage(dst) {
			log.Debug().Str("path", dst).Msg("using cached")
			return dst, nil
		}
		log.Warn().Str("path", dst).Msg("cached file is not an image, refetching")
		_ = os.Remove(dst)
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("cache dir: %w", err)
	}

	log.Info().Str("url", shorten(rawURL, 50)).Msg("downloading")
	if err := f.download(ctx, rawURL, dst); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetUnavailable, name, err)
	}
	return dst, nil
}

func (f *HTTPFetcher) download(ctx context.Context, rawURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.cacheDir, filepath.Base(dst)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if !validImage(tmp.Name()) {
		return fmt.Errorf("response is not a decodable image")
	}
	return os.Rename(tmp.Name(), dst)
}

func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png":
		return ext
	}
	return ".jpg"
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataFile   string `yaml:"data_file"`
	OutputDir  string `yaml:"output_dir"`
	CacheDir   string `yaml:"cache_dir"`
	ScriptsDir string `yaml:"scripts_dir"`
	ImagesDir  string `yaml:"images_dir"`
	FontPath   string `yaml:"font_path"`

	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	FPS     int `yaml:"fps"`
	Workers int `yaml:"workers"`

	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	Encoder EncoderConfig `yaml:"encoder"`
	Publish PublishConfig `yaml:"publish"`

	Verbose bool `yaml:"verbose"`
}

type EncoderConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
	// Codec is an ffmpeg H.264 encoder name or "auto" for hardware detection.
	Codec   string `yaml:"codec"`
	Preset  string `yaml:"preset"`
	Quality int    `yaml:"quality"`
	// Threads is the ffmpeg -threads hint; 0 derives it from the host.
	Threads int `yaml:"threads"`
}

type PublishConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// EncodeParams is what the encoder needs to know about one output video.
type EncodeParams struct {
	Width, Height int
	FPS           int
	Codec         string
	Preset        string
	Quality       int
	Threads       int
}

func Default() *Config {
	return &Config{
		DataFile:     filepath.Join("src", "data", "tiktok-fiches-production.json"),
		OutputDir:    filepath.Join("public", "ads"),
		CacheDir:     filepath.Join("scripts", ".temp_images"),
		Width:        1080,
		Height:       1920,
		FPS:          30,
		Workers:      runtime.NumCPU(),
		FetchTimeout: 30 * time.Second,
		Encoder: EncoderConfig{
			FFmpegPath: "ffmpeg",
			Codec:      "libx264",
			Preset:     "medium",
			Quality:    23,
		},
	}
}

// Load reads the YAML config at path over the defaults. An empty path falls
// back to the first config file found in the working directory; a missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("data file is empty")
	}
	if c.OutputDir == "" {
		return errors.New("output dir is empty")
	}
	if c.CacheDir == "" {
		return errors.New("cache dir is empty")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	// yuv420p needs even dimensions
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("resolution %dx%d must be even", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be > 0")
	}
	if c.Encoder.Threads < 0 {
		return fmt.Errorf("encoder threads %d must be >= 0", c.Encoder.Threads)
	}
	if c.Encoder.Quality < 0 || c.Encoder.Quality > 51 {
		return fmt.Errorf("encoder quality %d out of range 0-51", c.Encoder.Quality)
	}
	return nil
}

// EncodeParams derives the per-video encoder settings from the config.
func (c *Config) EncodeParams() EncodeParams {
	return EncodeParams{
		Width:   c.Width,
		Height:  c.Height,
		FPS:     c.FPS,
		Codec:   c.Encoder.Codec,
		Preset:  c.Encoder.Preset,
		Quality: c.Encoder.Quality,
		Threads: c.Encoder.Threads,
	}
}

// ApplyEnv overrides settings from PROMOREEL_* environment variables, as
// loaded from the process environment or a .env file.
func (c *Config) ApplyEnv() {
	str := map[string]*string{
		"PROMOREEL_DATA":           &c.DataFile,
		"PROMOREEL_OUTPUT_DIR":     &c.OutputDir,
		"PROMOREEL_CACHE_DIR":      &c.CacheDir,
		"PROMOREEL_FONT":           &c.FontPath,
		"PROMOREEL_FFMPEG":         &c.Encoder.FFmpegPath,
		"PROMOREEL_CODEC":          &c.Encoder.Codec,
		"PROMOREEL_PUBLISH_BUCKET": &c.Publish.Bucket,
		"PROMOREEL_PUBLISH_PREFIX": &c.Publish.Prefix,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PROMOREEL_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.FetchTimeout = d
		}
	}
}

func findConfigFile() string {
	candidates := []string{
		"./promoreel.yaml",
		"./config.yaml",
		"./config.yml",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

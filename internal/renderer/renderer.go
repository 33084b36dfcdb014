package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/ivlev/promoreel/internal/effects"
	"github.com/ivlev/promoreel/internal/system"
)

// ErrNoDuration is returned for a scene with neither an explicit duration nor
// an overlay that bounds it.
var ErrNoDuration = errors.New("scene has no duration")

// Clip is a time-parametric frame source. RenderFrame overwrites every pixel
// of dst with the frame at local time t.
type Clip interface {
	Duration() float64
	RenderFrame(dst *image.RGBA, t float64)
}

// Background paints the bottom layer of a scene.
type Background interface {
	Render(dst *image.RGBA, t float64)
}

// ImageBackground is a frame-sized still with optional blur-in and zoom.
type ImageBackground struct {
	Image *image.RGBA
	Blur  *effects.BlurIn
	Zoom  effects.Curve
}

func (b *ImageBackground) Render(dst *image.RGBA, t float64) {
	src := b.Image
	if b.Blur != nil {
		src = b.Blur.Frame(t)
	}
	if b.Zoom != nil {
		effects.Zoom(dst, src, b.Zoom(t))
		return
	}
	effects.Copy(dst, src)
}

type ColorBackground struct {
	Color color.RGBA
}

func (b ColorBackground) Render(dst *image.RGBA, _ float64) {
	effects.Fill(dst, b.Color)
}

type SceneConfig struct {
	Name string
	// Duration in seconds. Zero derives it from the latest overlay end.
	Duration   float64
	Background Background
	// Dim darkens the background with black at this opacity (0-1).
	Dim   float64
	Shake *effects.Shake
}

// Scene is one background plus its timed overlay layers.
type Scene struct {
	name     string
	duration float64
	bg       Background
	dim      *image.Uniform
	shake    *effects.Shake
	layers   []*Layer
}

// NewScene fixes the scene duration and fits every layer inside [0, duration).
// Layers that cannot fit are dropped with a warning.
func NewScene(cfg SceneConfig, layers []*Layer, logger zerolog.Logger) (*Scene, error) {
	if cfg.Background == nil {
		return nil, fmt.Errorf("scene %s: no background", cfg.Name)
	}

	duration := cfg.Duration
	if duration <= 0 {
		for _, l := range layers {
			duration = max(duration, l.End)
		}
	}
	if duration <= 0 {
		return nil, fmt.Errorf("scene %s: %w", cfg.Name, ErrNoDuration)
	}

	s := &Scene{
		name:     cfg.Name,
		duration: duration,
		bg:       cfg.Background,
		shake:    cfg.Shake,
	}
	if cfg.Dim > 0 {
		s.dim = image.NewUniform(color.NRGBA{A: uint8(255 * min(cfg.Dim, 1))})
	}

	log := logger.With().Str("scene", cfg.Name).Logger()
	for _, l := range layers {
		if l.End <= 0 {
			l.End = duration
		}
		l.Start = max(l.Start, 0)
		switch {
		case l.Start >= duration:
			log.Warn().Str("overlay", l.Label).Float64("start", l.Start).Msg("overlay starts after the scene ends, dropped")
			continue
		case l.End > duration:
			log.Warn().Str("overlay", l.Label).Float64("end", l.End).Float64("duration", duration).Msg("overlay clamped to scene end")
			l.End = duration
		}
		if l.Start >= l.End {
			log.Warn().Str("overlay", l.Label).Msg("overlay has an empty interval, dropped")
			continue
		}
		s.layers = append(s.layers, l)
	}
	return s, nil
}

func (s *Scene) Name() string { return s.name }

func (s *Scene) Duration() float64 { return s.duration }

func (s *Scene) Layers() []*Layer { return s.layers }

func (s *Scene) RenderFrame(dst *image.RGBA, t float64) {
	if s.shake != nil && s.shake.Intensity > 0 {
		buf := system.GetImage(dst.Rect)
		s.bg.Render(buf, t)
		dx, dy := s.shake.Offset(t)
		effects.Roll(dst, buf, dx, dy)
		system.PutImage(buf)
	} else {
		s.bg.Render(dst, t)
	}

	if s.dim != nil {
		draw.Draw(dst, dst.Bounds(), s.dim, image.Point{}, draw.Over)
	}

	for _, l := range s.layers {
		if l.Active(t) {
			l.Draw(dst, t)
		}
	}
}

// Flash is a solid white transition clip.
type Flash struct {
	duration float64
	Color    color.RGBA
}

func NewFlash(duration float64) *Flash {
	return &Flash{duration: duration, Color: color.RGBA{255, 255, 255, 255}}
}

func (f *Flash) Duration() float64 { return f.duration }

func (f *Flash) RenderFrame(dst *image.RGBA, _ float64) {
	effects.Fill(dst, f.Color)
}

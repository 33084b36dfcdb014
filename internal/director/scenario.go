package director

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/effects"
	"github.com/ivlev/promoreel/internal/renderer"
)

// ErrNoScenes is returned for a script, or a generated video, with nothing to show.
var ErrNoScenes = errors.New("no scenes")

// Script is one planned video: an ordered list of scenes and transitions plus
// an optional badge kept on screen for the whole video.
type Script struct {
	Name   string            `yaml:"name"`
	Title  string            `yaml:"title"`
	Batch  string            `yaml:"batch"`
	Badge  *campaign.Overlay `yaml:"badge,omitempty"`
	Scenes []SceneSpec       `yaml:"scenes"`
}

type SceneKind string

const (
	KindImage SceneKind = "image"
	KindColor SceneKind = "color"
	KindFlash SceneKind = "flash"
)

// SceneSpec declares one clip of a script.
type SceneSpec struct {
	Kind     SceneKind `yaml:"kind"`
	Name     string    `yaml:"name,omitempty"`
	Duration float64   `yaml:"duration,omitempty"`

	// image scenes
	Fiche     string `yaml:"fiche,omitempty"`
	Image     string `yaml:"image,omitempty"`
	CacheName string `yaml:"cache_name,omitempty"`

	// color and flash scenes
	Color campaign.Color `yaml:"color,omitempty"`

	Zoom   *ZoomSpec      `yaml:"zoom,omitempty"`
	BlurIn float64        `yaml:"blur_in,omitempty"`
	Shake  *effects.Shake `yaml:"shake,omitempty"`
	Dim    float64        `yaml:"dim,omitempty"`

	// FicheOverlays appends the fiche's own overlay list after Overlays.
	FicheOverlays bool               `yaml:"fiche_overlays,omitempty"`
	Overlays      []campaign.Overlay `yaml:"overlays,omitempty"`
}

// ZoomSpec selects a zoom curve for an image background.
type ZoomSpec struct {
	Mode      string              `yaml:"mode"`
	Start     float64             `yaml:"start,omitempty"`
	End       float64             `yaml:"end,omitempty"`
	Peak      float64             `yaml:"peak,omitempty"`
	PunchTime float64             `yaml:"punch_time,omitempty"`
	Keyframes []renderer.Keyframe `yaml:"keyframes,omitempty"`
}

// Curve builds the zoom curve for a scene lasting duration seconds.
func (z *ZoomSpec) Curve(duration float64) (effects.Curve, error) {
	start := z.Start
	if start <= 0 {
		start = 1
	}
	switch z.Mode {
	case "linear", "":
		end := z.End
		if end <= 0 {
			end = start
		}
		return effects.ZoomLinear(start, end, duration), nil
	case "punch":
		if z.PunchTime < 0 {
			return nil, fmt.Errorf("negative punch_time %v", z.PunchTime)
		}
		peak := z.Peak
		if peak <= 0 {
			peak = start
		}
		return effects.ZoomPunch(start, peak, z.PunchTime), nil
	case "keyframes":
		if len(z.Keyframes) == 0 {
			return nil, errors.New("keyframes zoom has no keyframes")
		}
		for _, kf := range z.Keyframes {
			if kf.Zoom <= 0 {
				return nil, fmt.Errorf("keyframe at %vs has zoom %v", kf.Time, kf.Zoom)
			}
		}
		return renderer.KeyframeCurve(z.Keyframes), nil
	}
	return nil, fmt.Errorf("unknown zoom mode %q", z.Mode)
}

// Label names the scene in logs.
func (s SceneSpec) Label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%d-%s", i+1, s.Kind)
}

func (s *Script) Validate() error {
	if s.Name == "" {
		return errors.New("script has no name")
	}
	if strings.ContainsAny(s.Name, `/\`) || s.Name == "." || s.Name == ".." {
		return fmt.Errorf("script name %q is not a file name", s.Name)
	}
	if len(s.Scenes) == 0 {
		return fmt.Errorf("script %s: %w", s.Name, ErrNoScenes)
	}
	for i, sc := range s.Scenes {
		if err := sc.validate(); err != nil {
			return fmt.Errorf("script %s scene %s: %w", s.Name, sc.Label(i), err)
		}
	}
	if s.Badge != nil && s.Badge.Text == "" {
		return fmt.Errorf("script %s: badge has no text", s.Name)
	}
	return nil
}

func (s SceneSpec) validate() error {
	if s.Duration < 0 {
		return fmt.Errorf("negative duration %v", s.Duration)
	}
	if s.BlurIn < 0 || s.Dim < 0 || s.Dim > 1 {
		return errors.New("blur_in must be >= 0 and dim within 0-1")
	}
	switch s.Kind {
	case KindImage:
		if s.Fiche == "" || s.Image == "" {
			return errors.New("image scene needs fiche and image")
		}
	case KindColor:
		if _, err := s.Color.RGBA(); err != nil {
			return err
		}
	case KindFlash:
		if s.Duration <= 0 {
			return errors.New("flash needs a duration")
		}
		if s.Color != "" {
			if _, err := s.Color.RGBA(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown scene kind %q", s.Kind)
	}
	if s.Zoom != nil {
		if _, err := s.Zoom.Curve(max(s.Duration, 1)); err != nil {
			return err
		}
	}
	for _, o := range s.Overlays {
		if o.Start < 0 || o.End < 0 {
			return fmt.Errorf("overlay %q has negative timing", o.Text)
		}
	}
	return nil
}

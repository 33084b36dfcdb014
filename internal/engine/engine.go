package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/director"
	"github.com/ivlev/promoreel/internal/effects"
	"github.com/ivlev/promoreel/internal/publish"
	"github.com/ivlev/promoreel/internal/renderer"
	"github.com/ivlev/promoreel/internal/source"
	"github.com/ivlev/promoreel/internal/video"
)

// Generator turns scripts into encoded videos for one campaign.
type Generator struct {
	Config    *config.Config
	Campaign  *campaign.Campaign
	Fetcher   source.Fetcher
	Encoder   video.VideoEncoder
	Publisher publish.Publisher
	// Prober reads the duration back from an encoded file.
	Prober func(path string) (float64, error)

	raster *renderer.Rasterizer
	logger zerolog.Logger
}

func NewGenerator(cfg *config.Config, camp *campaign.Campaign, fetcher source.Fetcher, enc video.VideoEncoder, logger zerolog.Logger) *Generator {
	fonts := effects.NewFonts(cfg.FontPath)
	return &Generator{
		Config:   cfg,
		Campaign: camp,
		Fetcher:  fetcher,
		Encoder:  enc,
		Prober:   video.Probe,
		raster: &renderer.Rasterizer{
			Fonts:  fonts,
			Width:  cfg.Width,
			Height: cfg.Height,
			Logger: logger,
		},
		logger: logger,
	}
}

func (g *Generator) Fonts() *effects.Fonts { return g.raster.Fonts }

// Result describes one planned video after generation.
type Result struct {
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Batch           string  `json:"batch"`
	Output          string  `json:"output,omitempty"`
	URI             string  `json:"uri,omitempty"`
	Duration        float64 `json:"duration"`
	EncodedDuration float64 `json:"encoded_duration,omitempty"`
	Frames          int     `json:"frames"`
	ScenesKept      int     `json:"scenes_kept"`
	ScenesSkipped   int     `json:"scenes_skipped"`
	Elapsed         float64 `json:"elapsed_seconds"`
	Error           string  `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r *Result) OK() bool { return r.Err == nil }

// Generate builds the timeline for script, encodes it to OutputDir/<name>.mp4
// and publishes it when a publisher is set.
func (g *Generator) Generate(ctx context.Context, script *director.Script) (*Result, error) {
	start := time.Now()
	res := &Result{Name: script.Name, Title: script.Title, Batch: script.Batch}
	log := g.logger.With().Str("video", script.Name).Logger()

	tl, err := g.Build(ctx, script, res)
	if err != nil {
		return res, err
	}
	res.Duration = tl.Duration()
	res.Frames = tl.FrameCount(g.Config.FPS)

	out := filepath.Join(g.Config.OutputDir, script.Name+".mp4")
	log.Info().
		Int("scenes", res.ScenesKept).
		Int("skipped", res.ScenesSkipped).
		Float64("duration", res.Duration).
		Msg("timeline ready")

	if err := g.Encoder.Encode(ctx, tl, out, g.Config.EncodeParams()); err != nil {
		return res, fmt.Errorf("encode %s: %w", script.Name, err)
	}
	res.Output = out
	res.Elapsed = time.Since(start).Seconds()

	if g.Prober != nil {
		if d, err := g.Prober(out); err != nil {
			log.Warn().Err(err).Str("output", out).Msg("could not read encoded duration")
		} else {
			res.EncodedDuration = d
		}
	}

	if res.Elapsed > 0 {
		log.Info().
			Str("output", out).
			Float64("seconds", res.Elapsed).
			Float64("fps", float64(res.Frames)/res.Elapsed).
			Msg("video ready")
	}

	if g.Publisher != nil {
		uri, err := g.Publisher.Publish(ctx, out)
		if err != nil {
			log.Error().Err(err).Msg("publish failed")
			res.Error = err.Error()
		} else {
			res.URI = uri
		}
	}
	return res, nil
}

// Build turns a script into a timeline. Scenes whose image cannot be fetched
// or decoded are skipped; a transition left without a scene on both sides is
// dropped with them.
func (g *Generator) Build(ctx context.Context, script *director.Script, res *Result) (*director.Timeline, error) {
	log := g.logger.With().Str("video", script.Name).Logger()

	var clips []renderer.Clip
	for i, spec := range script.Scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := spec.Label(i)

		if spec.Kind == director.KindFlash {
			flash := renderer.NewFlash(spec.Duration)
			if spec.Color != "" {
				flash.Color = toRGBA(spec.Color.MustRGBA(color.NRGBA{255, 255, 255, 255}))
			}
			clips = append(clips, flash)
			continue
		}

		scene, err := g.buildScene(ctx, spec, label, log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn().
				Err(err).
				Str("scene", label).
				Bool("asset", errors.Is(err, source.ErrAssetUnavailable)).
				Msg("scene skipped")
			res.ScenesSkipped++
			continue
		}
		clips = append(clips, scene)
		res.ScenesKept++
	}

	if res.ScenesKept == 0 {
		return nil, fmt.Errorf("video %s: %w", script.Name, director.ErrNoScenes)
	}

	tl := director.Assemble(pruneTransitions(clips)...)

	if script.Badge != nil {
		badge := *script.Badge
		badge.Text = g.Campaign.Expand(badge.Text)
		layer, err := g.raster.Layer(badge)
		if err != nil {
			log.Warn().Err(err).Msg("badge dropped")
		} else {
			tl.WithGlobal(layer)
		}
	}
	return tl, nil
}

func (g *Generator) buildScene(ctx context.Context, spec director.SceneSpec, label string, log zerolog.Logger) (*renderer.Scene, error) {
	overlays := make([]campaign.Overlay, 0, len(spec.Overlays))
	overlays = append(overlays, spec.Overlays...)

	var bg renderer.Background
	switch spec.Kind {
	case director.KindImage:
		fiche, ok := g.Campaign.Fiche(spec.Fiche)
		if !ok {
			return nil, fmt.Errorf("%w: unknown fiche %s", source.ErrAssetUnavailable, spec.Fiche)
		}
		if spec.FicheOverlays {
			overlays = append(overlays, fiche.Overlays...)
		}
		img, err := g.background(ctx, spec, fiche, sceneDuration(spec.Duration, overlays))
		if err != nil {
			return nil, err
		}
		bg = img
	case director.KindColor:
		c, err := spec.Color.RGBA()
		if err != nil {
			return nil, err
		}
		bg = renderer.ColorBackground{Color: toRGBA(c)}
	default:
		return nil, fmt.Errorf("unknown scene kind %q", spec.Kind)
	}

	for i := range overlays {
		overlays[i].Text = g.Campaign.Expand(overlays[i].Text)
	}
	layers := g.raster.Layers(overlays)

	return renderer.NewScene(renderer.SceneConfig{
		Name:       label,
		Duration:   spec.Duration,
		Background: bg,
		Dim:        spec.Dim,
		Shake:      spec.Shake,
	}, layers, log)
}

func (g *Generator) background(ctx context.Context, spec director.SceneSpec, fiche campaign.Fiche, duration float64) (*renderer.ImageBackground, error) {
	url, ok := fiche.Image(spec.Image)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %q image", source.ErrAssetUnavailable, fiche.ID, spec.Image)
	}
	name := spec.CacheName
	if name == "" {
		name = fiche.ID + "_" + spec.Image
	}

	path, err := g.Fetcher.Fetch(ctx, url, name)
	if err != nil {
		return nil, err
	}
	img, err := source.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrAssetUnavailable, err)
	}

	bg := &renderer.ImageBackground{Image: effects.AspectFit(img, g.Config.Width, g.Config.Height)}
	if spec.BlurIn > 0 {
		bg.Blur, err = effects.NewBlurIn(ctx, bg.Image, effects.DefaultBlurRadii, spec.BlurIn, g.Config.Workers)
		if err != nil {
			return nil, err
		}
	}
	if spec.Zoom != nil {
		bg.Zoom, err = spec.Zoom.Curve(duration)
		if err != nil {
			return nil, err
		}
	}
	return bg, nil
}

// sceneDuration mirrors the rule NewScene applies, for curves that need the
// length up front.
func sceneDuration(d float64, overlays []campaign.Overlay) float64 {
	if d > 0 {
		return d
	}
	for _, o := range overlays {
		d = max(d, o.End)
	}
	return d
}

// pruneTransitions keeps a flash only when content sits on both sides of it,
// and collapses consecutive flashes into the first.
func pruneTransitions(clips []renderer.Clip) []renderer.Clip {
	var out []renderer.Clip
	for _, c := range clips {
		if _, isFlash := c.(*renderer.Flash); isFlash {
			if len(out) == 0 {
				continue
			}
			if _, prevFlash := out[len(out)-1].(*renderer.Flash); prevFlash {
				continue
			}
		}
		out = append(out, c)
	}
	for len(out) > 0 {
		if _, isFlash := out[len(out)-1].(*renderer.Flash); !isFlash {
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/effects"
	"github.com/ivlev/promoreel/internal/system"
)

// Layer is a rasterized overlay placed on the frame during [Start, End).
type Layer struct {
	Label      string
	Image      *image.RGBA
	Pos        image.Point
	Start, End float64
	Pulse      bool
}

func (l *Layer) Active(t float64) bool {
	return t >= l.Start && t < l.End
}

// Draw composites the layer over dst. Pulsing layers are rescaled about their
// own center, with the pulse clock starting when the layer appears.
func (l *Layer) Draw(dst *image.RGBA, t float64) {
	img := l.Image
	if l.Pulse {
		buf := system.GetImage(img.Rect)
		defer system.PutImage(buf)
		effects.Rescale(buf, img, effects.PulseScale(t-l.Start))
		img = buf
	}
	r := image.Rectangle{Min: l.Pos, Max: l.Pos.Add(img.Rect.Size())}
	draw.Draw(dst, r, img, img.Rect.Min, draw.Over)
}

var roseNeon = color.NRGBA{0xFF, 0x4D, 0x6D, 0xFF}

const (
	defaultBadgeHeight = 80
	defaultQRSize      = 300
)

// Rasterizer turns overlay descriptors into layers for a Width×Height frame.
type Rasterizer struct {
	Fonts  *effects.Fonts
	Width  int
	Height int
	Logger zerolog.Logger
}

func (r *Rasterizer) Layer(o campaign.Overlay) (*Layer, error) {
	o = o.WithDefaults()
	fg, err := o.Color.RGBA()
	if err != nil {
		return nil, err
	}

	var img *image.RGBA
	switch o.Style {
	case campaign.StylePlain:
		face, err := r.Fonts.Face(o.FontSize)
		if err != nil {
			return nil, err
		}
		img, err = effects.PlainText(effects.TextOptions{Text: o.Text, Face: face, Color: fg})
		if err != nil {
			return nil, err
		}
	case campaign.StyleNeon:
		face, err := r.Fonts.Face(o.FontSize)
		if err != nil {
			return nil, err
		}
		img, err = effects.NeonText(effects.TextOptions{
			Text:      o.Text,
			Face:      face,
			Color:     fg,
			GlowColor: o.GlowColor.MustRGBA(roseNeon),
			Glow:      o.Glow,
		})
		if err != nil {
			return nil, err
		}
	case campaign.StyleBadge:
		face, err := r.Fonts.Face(o.FontSize)
		if err != nil {
			return nil, err
		}
		height := o.Height
		if height <= 0 {
			height = defaultBadgeHeight
		}
		img, err = effects.Badge(effects.BadgeOptions{
			Text:       o.Text,
			Face:       face,
			Width:      r.Width,
			Height:     height,
			Background: o.Background.MustRGBA(roseNeon),
			TextColor:  fg,
			Gradient:   o.Gradient,
			Shadow:     o.Shadow,
		})
		if err != nil {
			return nil, err
		}
	case campaign.StyleQR:
		size := o.Height
		if size <= 0 {
			size = defaultQRSize
		}
		img, err = effects.QRCode(o.Text, size)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown overlay style %q", o.Style)
	}

	b := img.Bounds()
	return &Layer{
		Label: o.Text,
		Image: img,
		Pos:   o.Position.Resolve(r.Width, r.Height, b.Dx(), b.Dy()),
		Start: o.Start,
		End:   o.End,
		Pulse: o.Pulse,
	}, nil
}

// Layers rasterizes every overlay in order. An overlay that fails is dropped
// and logged; the rest still render.
func (r *Rasterizer) Layers(overlays []campaign.Overlay) []*Layer {
	layers := make([]*Layer, 0, len(overlays))
	for _, o := range overlays {
		l, err := r.Layer(o)
		if err != nil {
			r.Logger.Warn().Err(err).Str("overlay", o.Text).Msg("overlay dropped")
			continue
		}
		layers = append(layers, l)
	}
	return layers
}

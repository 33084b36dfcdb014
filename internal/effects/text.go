package effects

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// ErrEmptyText is returned when there is nothing to rasterize.
var ErrEmptyText = errors.New("empty text")

const (
	neonPadding  = 50
	plainPadding = 20
	strokeWidth  = 2
)

var (
	fallbackOnce sync.Once
	fallbackFont *truetype.Font
	fallbackErr  error
)

// Fonts caches faces by size. A path that cannot be loaded falls back to the
// embedded Go Bold face. Not safe for concurrent use.
type Fonts struct {
	Path string

	faces    map[float64]font.Face
	Fallback bool
}

func NewFonts(path string) *Fonts {
	return &Fonts{Path: path, faces: make(map[float64]font.Face)}
}

func (f *Fonts) Face(size float64) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, fellBack, err := LoadFace(f.Path, size)
	if err != nil {
		return nil, err
	}
	if fellBack {
		f.Fallback = true
	}
	f.faces[size] = face
	return face, nil
}

// LoadFace loads the TrueType font at path. An empty or unloadable path yields
// the embedded face and fellBack=true.
func LoadFace(path string, size float64) (face font.Face, fellBack bool, err error) {
	if size <= 0 {
		return nil, false, fmt.Errorf("invalid font size %v", size)
	}
	if path != "" {
		if face, err := gg.LoadFontFace(path, size); err == nil {
			return face, false, nil
		}
	}

	fallbackOnce.Do(func() {
		fallbackFont, fallbackErr = truetype.Parse(gobold.TTF)
	})
	if fallbackErr != nil {
		return nil, true, fmt.Errorf("parse embedded font: %w", fallbackErr)
	}
	return truetype.NewFace(fallbackFont, &truetype.Options{Size: size, Hinting: font.HintingFull}), true, nil
}

// TextOptions describe one text overlay.
type TextOptions struct {
	Text      string
	Face      font.Face
	Color     color.NRGBA
	GlowColor color.NRGBA
	// Glow is the number of glow layers; zero means 3.
	Glow int
}

func measure(face font.Face, text string) (int, int) {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	w, h := dc.MeasureString(text)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

func drawText(img *image.RGBA, face font.Face, text string, c color.Color, x, y float64) {
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawStringAnchored(text, x, y, 0, 1)
}

// NeonText renders text over stacked blurred glow layers. Layer i (from the
// outermost) has alpha 255*0.3/i and blur radius 5*i. A soft shadow and the
// crisp text go on top.
func NeonText(opts TextOptions) (*image.RGBA, error) {
	text := strings.TrimSpace(opts.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if opts.Face == nil {
		return nil, errors.New("neon text: nil font face")
	}
	layers := opts.Glow
	if layers <= 0 {
		layers = 3
	}

	tw, th := measure(opts.Face, text)
	bounds := image.Rect(0, 0, tw+neonPadding*2, th+neonPadding*2)
	img := image.NewRGBA(bounds)
	pad := float64(neonPadding)

	for i := layers; i > 0; i-- {
		layer := image.NewRGBA(bounds)
		glow := opts.GlowColor
		glow.A = uint8(255 * (0.3 / float64(i)))
		drawText(layer, opts.Face, text, glow, pad, pad)
		blurred := imaging.Blur(layer, 5*float64(i))
		draw.Draw(img, bounds, blurred, image.Point{}, draw.Over)
	}

	drawText(img, opts.Face, text, color.NRGBA{0, 0, 0, 150}, pad+2, pad+2)
	fg := opts.Color
	fg.A = 255
	drawText(img, opts.Face, text, fg, pad, pad)
	return img, nil
}

// PlainText renders text with a black outline and a drop shadow.
func PlainText(opts TextOptions) (*image.RGBA, error) {
	text := strings.TrimSpace(opts.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if opts.Face == nil {
		return nil, errors.New("plain text: nil font face")
	}

	tw, th := measure(opts.Face, text)
	pad := plainPadding + strokeWidth
	img := image.NewRGBA(image.Rect(0, 0, tw+pad*2, th+pad*2))
	x, y := float64(pad), float64(pad)

	drawText(img, opts.Face, text, color.NRGBA{0, 0, 0, 180}, x+2, y+2)

	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(opts.Face)
	dc.SetColor(color.Black)
	for dy := -strokeWidth; dy <= strokeWidth; dy++ {
		for dx := -strokeWidth; dx <= strokeWidth; dx++ {
			if dx*dx+dy*dy > strokeWidth*strokeWidth || (dx == 0 && dy == 0) {
				continue
			}
			dc.DrawStringAnchored(text, x+float64(dx), y+float64(dy), 0, 1)
		}
	}

	dc.SetColor(opts.Color)
	dc.DrawStringAnchored(text, x, y, 0, 1)
	return img, nil
}

package effects

import (
	"errors"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
)

// BadgeOptions describe a full-width banner.
type BadgeOptions struct {
	Text       string
	Face       font.Face
	Width      int
	Height     int
	Background color.NRGBA
	TextColor  color.NRGBA
	// Gradient ramps the background alpha from 0.8 at the top to 1.0.
	Gradient bool
	Shadow   bool
}

func Badge(opts BadgeOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.New("badge: invalid size")
	}
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	dc := gg.NewContextForRGBA(img)

	if opts.Gradient {
		bg := opts.Background
		for i := 0; i < opts.Height; i++ {
			bg.A = uint8(255 * (0.8 + 0.2*float64(i)/float64(opts.Height)))
			dc.SetColor(bg)
			dc.DrawRectangle(0, float64(i), float64(opts.Width), 1)
			dc.Fill()
		}
	} else {
		dc.SetColor(opts.Background)
		dc.Clear()
	}

	if opts.Text == "" {
		return img, nil
	}
	if opts.Face == nil {
		return nil, errors.New("badge: nil font face")
	}
	dc.SetFontFace(opts.Face)
	cx, cy := float64(opts.Width)/2, float64(opts.Height)/2
	if opts.Shadow {
		dc.SetColor(color.NRGBA{0, 0, 0, 100})
		dc.DrawStringAnchored(opts.Text, cx+2, cy+2, 0.5, 0.5)
	}
	dc.SetColor(opts.TextColor)
	dc.DrawStringAnchored(opts.Text, cx, cy, 0.5, 0.5)
	return img, nil
}

// QRCode encodes content as a size×size square code.
func QRCode(content string, size int) (*image.RGBA, error) {
	if content == "" {
		return nil, ErrEmptyText
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return ToRGBA(q.Image(size)), nil
}

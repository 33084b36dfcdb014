package effects

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// PulseScale breathes between 0.95 and 1.05 at 2 Hz.
func PulseScale(t float64) float64 {
	return 1 + 0.05*math.Sin(t*4*math.Pi)
}

// Rescale redraws src scaled about its center into dst, which has the same
// size. The rasterized pixels are resampled, not redrawn.
func Rescale(dst, src *image.RGBA, scale float64) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	b := src.Bounds()
	nw := int(float64(b.Dx()) * scale)
	nh := int(float64(b.Dy()) * scale)
	if nw <= 0 || nh <= 0 {
		return
	}
	ox := dst.Rect.Min.X + (b.Dx()-nw)/2
	oy := dst.Rect.Min.Y + (b.Dy()-nh)/2
	draw.CatmullRom.Scale(dst, image.Rect(ox, oy, ox+nw, oy+nh), src, b, draw.Src, nil)
}

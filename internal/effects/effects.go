// Package effects holds the per-frame image primitives: aspect fitting, zoom
// curves, blur-in, shake, pulse and overlay rasterization. Everything here is a
// pure function of its inputs and the elapsed local time.
package effects

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Curve maps elapsed local time (seconds) to a value, e.g. a zoom factor.
type Curve func(t float64) float64

// Constant is a curve that never changes.
func Constant(v float64) Curve {
	return func(float64) float64 { return v }
}

// CropRect returns the largest centered rectangle of b with aspect w:h.
func CropRect(b image.Rectangle, w, h int) image.Rectangle {
	target := float64(w) / float64(h)
	sw, sh := b.Dx(), b.Dy()

	if float64(sw)/float64(sh) > target {
		nw := max(int(float64(sh)*target), 1)
		left := (sw - nw) / 2
		return image.Rect(b.Min.X+left, b.Min.Y, b.Min.X+left+nw, b.Max.Y)
	}
	nh := max(int(float64(sw)/target), 1)
	top := (sh - nh) / 2
	return image.Rect(b.Min.X, b.Min.Y+top, b.Max.X, b.Min.Y+top+nh)
}

// AspectFit center-crops img to w:h and resamples it to exactly w×h.
func AspectFit(img image.Image, w, h int) *image.RGBA {
	cropped := imaging.Crop(img, CropRect(img.Bounds(), w, h))
	resized := resize.Resize(uint(w), uint(h), cropped, resize.Lanczos3)
	return ToRGBA(resized)
}

// ToRGBA returns img as a zero-origin *image.RGBA, copying when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Fill paints every pixel of dst with c.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Copy makes dst pixel-identical to src. Both must have the same bounds.
func Copy(dst, src *image.RGBA) {
	if dst.Stride == src.Stride && dst.Rect == src.Rect {
		copy(dst.Pix, src.Pix)
		return
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

package effects

import (
	"image"
	"math"
)

// Shake jitters a frame with two out-of-phase sinusoids.
type Shake struct {
	Intensity float64 `yaml:"intensity"`
	Frequency float64 `yaml:"frequency"`
}

// Offset returns the integer pixel shift at time t. Both components are bounded
// by Intensity and the pattern repeats every 4/Frequency seconds.
func (s Shake) Offset(t float64) (int, int) {
	return ShakeOffset(t, s.Intensity, s.Frequency)
}

func ShakeOffset(t, intensity, freq float64) (int, int) {
	x := int(intensity * math.Sin(t*freq*2*math.Pi))
	y := int(intensity * math.Cos(t*freq*1.5*math.Pi))
	return x, y
}

// Roll shifts src by (dx, dy) into dst, wrapping pixels that leave one edge
// back in at the opposite one. dst and src must be the same size and distinct.
func Roll(dst, src *image.RGBA, dx, dy int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	dx = mod(dx, w)
	dy = mod(dy, h)
	row := w * 4

	for y := 0; y < h; y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+(y+dy)%h)
		s := src.Pix[so : so+row]
		d := dst.Pix[do : do+row]
		copy(d[dx*4:], s[:(w-dx)*4])
		copy(d[:dx*4], s[(w-dx)*4:])
	}
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

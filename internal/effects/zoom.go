package effects

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ZoomLinear creeps from start to end over duration seconds and holds end
// afterwards.
func ZoomLinear(start, end, duration float64) Curve {
	return func(t float64) float64 {
		if duration <= 0 || t >= duration {
			return end
		}
		if t <= 0 {
			return start
		}
		return start + (end-start)*t/duration
	}
}

// ZoomPunch rises from start to peak with an ease-out cubic over punchTime,
// then holds peak.
func ZoomPunch(start, peak, punchTime float64) Curve {
	return func(t float64) float64 {
		if punchTime <= 0 || t >= punchTime {
			return peak
		}
		if t <= 0 {
			return start
		}
		eased := 1 - math.Pow(1-t/punchTime, 3)
		return start + (peak-start)*eased
	}
}

var black = color.RGBA{A: 0xff}

// Zoom scales src by scale about its center into dst. Content leaving the
// frame is cropped; uncovered area is black.
func Zoom(dst, src *image.RGBA, scale float64) {
	if scale == 1 && dst.Rect == src.Rect {
		Copy(dst, src)
		return
	}
	if scale < 1 {
		Fill(dst, black)
	}

	sb := src.Bounds()
	db := dst.Bounds()
	scx := float64(sb.Min.X) + float64(sb.Dx())/2
	scy := float64(sb.Min.Y) + float64(sb.Dy())/2
	dcx := float64(db.Min.X) + float64(db.Dx())/2
	dcy := float64(db.Min.Y) + float64(db.Dy())/2

	s2d := f64.Aff3{
		scale, 0, dcx - scale*scx,
		0, scale, dcy - scale*scy,
	}
	draw.ApproxBiLinear.Transform(dst, s2d, src, sb, draw.Src, nil)
}

package renderer

import (
	"sort"

	"github.com/ivlev/promoreel/internal/effects"
)

// Keyframe pins the zoom level at a moment of a scene.
type Keyframe struct {
	Time float64 `yaml:"time"`
	Zoom float64 `yaml:"zoom"`
}

// InterpolateKeyframes returns the zoom at currentTime, easing between the
// surrounding keyframes and holding the first and last values outside them.
func InterpolateKeyframes(keyframes []Keyframe, currentTime float64) float64 {
	if len(keyframes) == 0 {
		return 1.0
	}

	if currentTime <= keyframes[0].Time {
		return keyframes[0].Zoom
	}
	last := keyframes[len(keyframes)-1]
	if currentTime >= last.Time {
		return last.Zoom
	}

	// first keyframe strictly after currentTime
	i := sort.Search(len(keyframes), func(i int) bool { return keyframes[i].Time > currentTime })
	prev, next := keyframes[i-1], keyframes[i]

	timeDelta := next.Time - prev.Time
	if timeDelta <= 0 {
		return next.Zoom
	}
	t := easeInOutCubic((currentTime - prev.Time) / timeDelta)
	return lerp(prev.Zoom, next.Zoom, t)
}

// KeyframeCurve sorts a copy of keyframes and returns it as a zoom curve.
func KeyframeCurve(keyframes []Keyframe) effects.Curve {
	kfs := append([]Keyframe(nil), keyframes...)
	sort.SliceStable(kfs, func(i, j int) bool { return kfs[i].Time < kfs[j].Time })
	return func(t float64) float64 {
		return InterpolateKeyframes(kfs, t)
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

func easeInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

package director

import (
	"image"
	"math"
	"sort"

	"github.com/ivlev/promoreel/internal/renderer"
)

// Timeline places clips end to end. Each clip keeps its own clock; the
// timeline only tracks where each one starts.
type Timeline struct {
	clips    []renderer.Clip
	offsets  []float64
	duration float64
	globals  []*renderer.Layer
}

// Assemble concatenates clips in order. Nil and zero-length clips are skipped.
func Assemble(clips ...renderer.Clip) *Timeline {
	tl := &Timeline{}
	for _, c := range clips {
		if c == nil || c.Duration() <= 0 {
			continue
		}
		tl.clips = append(tl.clips, c)
		tl.offsets = append(tl.offsets, tl.duration)
		tl.duration += c.Duration()
	}
	return tl
}

func (tl *Timeline) Duration() float64 { return tl.duration }

func (tl *Timeline) Len() int { return len(tl.clips) }

func (tl *Timeline) Clip(i int) renderer.Clip { return tl.clips[i] }

// Offset is the global start time of clip i.
func (tl *Timeline) Offset(i int) float64 { return tl.offsets[i] }

// Locate maps global time t to a clip index and that clip's local time. Times
// past the end land on the last clip.
func (tl *Timeline) Locate(t float64) (int, float64) {
	if len(tl.clips) == 0 {
		return -1, 0
	}
	i := sort.Search(len(tl.offsets), func(i int) bool { return tl.offsets[i] > t }) - 1
	i = max(i, 0)
	return i, t - tl.offsets[i]
}

// WithGlobal composites l over every frame for the whole timeline.
func (tl *Timeline) WithGlobal(l *renderer.Layer) *Timeline {
	l.Start, l.End = 0, tl.duration
	tl.globals = append(tl.globals, l)
	return tl
}

func (tl *Timeline) Globals() []*renderer.Layer { return tl.globals }

func (tl *Timeline) RenderFrame(dst *image.RGBA, t float64) {
	i, local := tl.Locate(t)
	if i < 0 {
		return
	}
	tl.clips[i].RenderFrame(dst, local)
	for _, g := range tl.globals {
		if g.Active(t) {
			g.Draw(dst, t)
		}
	}
}

// FrameCount is the number of frames needed to cover the timeline at fps.
func (tl *Timeline) FrameCount(fps int) int {
	return int(math.Round(tl.duration * float64(fps)))
}

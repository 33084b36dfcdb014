package effects

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// DefaultBlurRadii are the precomputed blur-in steps, strongest first.
var DefaultBlurRadii = []float64{20, 15, 10, 5, 2, 0}

// BlurIn starts blurred and sharpens in discrete steps over Window seconds.
type BlurIn struct {
	Window float64

	radii  []float64
	levels []*image.RGBA
	sharp  *image.RGBA
}

// NewBlurIn precomputes one blurred copy of sharp per radius. Radii are sorted
// strongest first; a zero radius reuses the sharp image.
func NewBlurIn(ctx context.Context, sharp *image.RGBA, radii []float64, window float64, workers int) (*BlurIn, error) {
	if len(radii) == 0 {
		radii = DefaultBlurRadii
	}
	sorted := append([]float64(nil), radii...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if sorted[len(sorted)-1] < 0 {
		return nil, fmt.Errorf("negative blur radius %v", sorted[len(sorted)-1])
	}

	b := &BlurIn{
		Window: window,
		radii:  sorted,
		levels: make([]*image.RGBA, len(sorted)),
		sharp:  sharp,
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, r := range sorted {
		if r == 0 {
			b.levels[i] = sharp
			continue
		}
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.levels[i] = ToRGBA(imaging.Blur(sharp, r))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

// Index returns the level shown at time t.
func (b *BlurIn) Index(t float64) int {
	n := len(b.levels)
	if b.Window <= 0 || t >= b.Window {
		return n - 1
	}
	if t <= 0 {
		return 0
	}
	return min(int(t/b.Window*float64(n-1)), n-1)
}

// Radius is the blur radius visible at time t. It is zero once t >= Window.
func (b *BlurIn) Radius(t float64) float64 {
	if b.Window <= 0 || t >= b.Window {
		return 0
	}
	return b.radii[b.Index(t)]
}

// Frame returns the precomputed image for time t. Callers must not modify it.
func (b *BlurIn) Frame(t float64) *image.RGBA {
	if b.Radius(t) == 0 {
		return b.sharp
	}
	return b.levels[b.Index(t)]
}

package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/effects"
)

func TestInterpolateKeyframes(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0.0, Zoom: 1.0},
		{Time: 2.0, Zoom: 1.5},
		{Time: 4.0, Zoom: 2.0},
	}

	tests := []struct {
		time         float64
		expectedZoom float64
	}{
		{-1.0, 1.0}, // Before first keyframe
		{0.0, 1.0},  // First keyframe
		{1.0, 1.25}, // Midpoint between first and second
		{2.0, 1.5},  // Second keyframe
		{3.0, 1.75}, // Midpoint between second and third
		{4.0, 2.0},  // Third keyframe
		{5.0, 2.0},  // After last keyframe
	}

	for _, tt := range tests {
		got := InterpolateKeyframes(keyframes, tt.time)
		if math.Abs(got-tt.expectedZoom) > 1e-9 {
			t.Errorf("At time %.1f: expected zoom %.2f, got %.4f", tt.time, tt.expectedZoom, got)
		}
	}

	if InterpolateKeyframes(nil, 3) != 1.0 {
		t.Error("no keyframes should mean no zoom")
	}

	curve := KeyframeCurve([]Keyframe{{Time: 4, Zoom: 2}, {Time: 0, Zoom: 1}})
	if curve(0) != 1 || curve(4) != 2 {
		t.Error("KeyframeCurve should sort its keyframes")
	}
}

func solidLayer(label string, start, end float64) *Layer {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	effects.Fill(img, color.RGBA{255, 0, 0, 255})
	return &Layer{Label: label, Image: img, Pos: image.Pt(2, 2), Start: start, End: end}
}

func TestSceneDuration(t *testing.T) {
	bg := ColorBackground{Color: color.RGBA{30, 30, 40, 255}}

	s, err := NewScene(SceneConfig{Name: "cta", Background: bg}, []*Layer{solidLayer("a", 0, 5), solidLayer("b", 10, 15)}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration() != 15 {
		t.Errorf("derived duration = %v, want 15", s.Duration())
	}

	s, err = NewScene(SceneConfig{Name: "fixed", Duration: 20, Background: bg}, []*Layer{solidLayer("a", 10, 15)}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration() != 20 {
		t.Errorf("explicit duration = %v, want 20", s.Duration())
	}

	if _, err := NewScene(SceneConfig{Name: "empty", Background: bg}, nil, zerolog.Nop()); err == nil {
		t.Error("a scene without duration or overlays should fail")
	}
}

func TestSceneClampsLayers(t *testing.T) {
	bg := ColorBackground{Color: color.RGBA{A: 255}}
	layers := []*Layer{
		solidLayer("inside", 1, 2),
		solidLayer("open", 3, 0),
		solidLayer("overrun", 4, 9),
		solidLayer("late", 6, 8),
		solidLayer("empty", 2, 2),
	}
	s, err := NewScene(SceneConfig{Name: "clamp", Duration: 5, Background: bg}, layers, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	got := s.Layers()
	if len(got) != 3 {
		t.Fatalf("kept %d layers, want 3", len(got))
	}
	for _, l := range got {
		if l.Start < 0 || l.End > s.Duration() || l.Start >= l.End {
			t.Errorf("layer %s outside scene: [%v, %v)", l.Label, l.Start, l.End)
		}
	}
	if got[1].End != 5 || got[2].End != 5 {
		t.Errorf("open and overrun layers should end at 5, got %v and %v", got[1].End, got[2].End)
	}
}

func TestSceneOverlayVisibility(t *testing.T) {
	bg := ColorBackground{Color: color.RGBA{0, 0, 0, 255}}
	s, err := NewScene(SceneConfig{Name: "lifestyle", Background: bg}, []*Layer{solidLayer("Lien en bio", 10, 15)}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration() != 15 {
		t.Fatalf("duration = %v, want 15", s.Duration())
	}

	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	tests := []struct {
		t       float64
		visible bool
	}{{0, false}, {9.99, false}, {10, true}, {12.5, true}, {14.99, true}}
	for _, tt := range tests {
		s.RenderFrame(dst, tt.t)
		red := dst.RGBAAt(3, 3).R == 255
		if red != tt.visible {
			t.Errorf("t=%v: visible=%v, want %v", tt.t, red, tt.visible)
		}
	}
}

func TestSceneDimAndShake(t *testing.T) {
	bg := ColorBackground{Color: color.RGBA{200, 200, 200, 255}}
	s, err := NewScene(SceneConfig{
		Name:       "hook",
		Duration:   1,
		Background: bg,
		Dim:        0.4,
		Shake:      &effects.Shake{Intensity: 3, Frequency: 15},
	}, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	s.RenderFrame(dst, 0.37)
	got := dst.RGBAAt(0, 0)
	if got.A != 255 {
		t.Errorf("shake left a transparent border: %v", got)
	}
	if got.R < 115 || got.R > 125 {
		t.Errorf("dimmed value = %d, want about 120", got.R)
	}
}

func TestImageBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	effects.Fill(img, color.RGBA{10, 20, 30, 255})
	bg := &ImageBackground{Image: img, Zoom: effects.ZoomLinear(1, 1.1, 5)}

	dst := image.NewRGBA(img.Rect)
	bg.Render(dst, 2.5)
	if got := dst.RGBAAt(4, 4); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("zoomed background = %v", got)
	}
}

func TestFlash(t *testing.T) {
	f := NewFlash(0.1)
	if f.Duration() != 0.1 {
		t.Errorf("Duration = %v", f.Duration())
	}
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	f.RenderFrame(dst, 0.05)
	if dst.RGBAAt(1, 1) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("flash should be solid white")
	}
}

func TestRasterizerDropsBadOverlays(t *testing.T) {
	r := &Rasterizer{Fonts: effects.NewFonts(""), Width: 108, Height: 192, Logger: zerolog.Nop()}
	layers := r.Layers([]campaign.Overlay{
		{Text: "Lien en bio", Start: 10, End: 15, Position: campaign.At(150), FontSize: 12},
		{Text: "", Start: 0, End: 1},
		{Text: "x", Color: "notacolor"},
		{Text: "J-9", Style: campaign.StyleNeon, FontSize: 20, Pulse: true},
		{Text: "LIVRAISON", Style: campaign.StyleBadge, FontSize: 10, Height: 20},
		{Text: "https://drip.example", Style: campaign.StyleQR, Height: 40},
		{Text: "?", Style: "sparkle"},
	})
	if len(layers) != 4 {
		t.Fatalf("kept %d layers, want 4", len(layers))
	}
	if layers[0].Pos.Y != 150 || layers[0].Start != 10 || layers[0].End != 15 {
		t.Errorf("unexpected first layer: %+v", layers[0])
	}
	if !layers[1].Pulse {
		t.Error("neon layer should pulse")
	}
	if layers[2].Image.Bounds().Dx() != 108 {
		t.Error("badge should span the frame width")
	}

	dst := image.NewRGBA(image.Rect(0, 0, 108, 192))
	layers[1].Draw(dst, 0.3)
}

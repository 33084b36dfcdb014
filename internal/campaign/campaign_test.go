package campaign

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

const sampleDoc = `{
  "campagne": "Saint-Valentin 2026",
  "countdown": "J-9",
  "date_limite_livraison": "14/02",
  "lien_boutique": "https://drip.example/shop",
  "fiche_1_projecteur": {
    "nom": "Projecteur",
    "images_cj": {
      "principale": "https://cdn.example/p.jpg",
      "ambiance": "https://cdn.example/a.jpg",
      "lifestyle": "https://cdn.example/l.jpg"
    },
    "overlays_texte": [
      {"text": "Lien en bio", "start": 10, "end": 15, "position": ["center", 1500], "font_size": 45, "color": "white"}
    ]
  },
  "fiche_2_body": {
    "images_cj": {"principale": "https://cdn.example/b.jpg"},
    "overlays_texte": []
  }
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.Name != "Saint-Valentin 2026" || c.Countdown != "J-9" || c.DeliveryDeadline != "14/02" {
		t.Errorf("unexpected scalars: %+v", c)
	}
	if got := c.FicheIDs(); len(got) != 2 || got[0] != "fiche_1_projecteur" || got[1] != "fiche_2_body" {
		t.Errorf("FicheIDs = %v", got)
	}

	f, ok := c.Fiche("fiche_1_projecteur")
	if !ok {
		t.Fatal("fiche_1_projecteur missing")
	}
	if f.ID != "fiche_1_projecteur" || f.Name != "Projecteur" {
		t.Errorf("unexpected fiche: %+v", f)
	}
	if u, ok := f.Image("ambiance"); !ok || u != "https://cdn.example/a.jpg" {
		t.Errorf("Image(ambiance) = %q, %v", u, ok)
	}
	if _, ok := f.Image("detail"); ok {
		t.Error("Image(detail) should be absent")
	}

	if len(f.Overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(f.Overlays))
	}
	o := f.Overlays[0]
	if o.Text != "Lien en bio" || o.Start != 10 || o.End != 15 || o.FontSize != 45 {
		t.Errorf("unexpected overlay: %+v", o)
	}
	if o.Position.X.Anchor != AnchorCenter || o.Position.Y != Px(1500) {
		t.Errorf("unexpected position: %+v", o.Position)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":        `{"campagne": `,
		"missing name":    `{"countdown": "J-9"}`,
		"null name":       `{"campagne": null}`,
		"blank name":      `{"campagne": "  "}`,
		"bad fiche":       `{"campagne": "x", "fiche_1": {"images_cj": "oops"}}`,
		"bad scalar type": `{"campagne": 42}`,
		"invalid utf8":    "{\"campagne\": \"\xff\"}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	got := c.Expand("{countdown} | LIVRAISON GARANTIE AVANT LE {date_limite_livraison}")
	if got != "J-9 | LIVRAISON GARANTIE AVANT LE 14/02" {
		t.Errorf("Expand = %q", got)
	}
	if c.Expand("plain") != "plain" {
		t.Error("plain text must pass through")
	}
}

func TestPositionDecoding(t *testing.T) {
	tests := []struct {
		yaml string
		want Position
	}{
		{`center`, Position{}},
		{`bottom`, Position{Y: Coord{Anchor: AnchorEnd}}},
		{`[center, 300]`, At(300)},
		{`[120, 40]`, Position{X: Px(120), Y: Px(40)}},
		{`{x: right, y: top}`, Position{X: Coord{Anchor: AnchorEnd}, Y: Coord{Anchor: AnchorStart}}},
	}
	for _, tt := range tests {
		t.Run(tt.yaml, func(t *testing.T) {
			var p Position
			if err := yaml.Unmarshal([]byte(tt.yaml), &p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p != tt.want {
				t.Errorf("got %+v, want %+v", p, tt.want)
			}
		})
	}

	var p Position
	if err := yaml.Unmarshal([]byte(`[top, 10]`), &p); err == nil {
		t.Error("top on the x axis should be rejected")
	}
}

func TestPositionResolve(t *testing.T) {
	tests := []struct {
		pos  Position
		want image.Point
	}{
		{Position{}, image.Pt(440, 860)},
		{At(300), image.Pt(440, 300)},
		{Position{X: Coord{Anchor: AnchorStart}, Y: Coord{Anchor: AnchorEnd}}, image.Pt(0, 1720)},
	}
	for _, tt := range tests {
		if got := tt.pos.Resolve(1080, 1920, 200, 200); got != tt.want {
			t.Errorf("Resolve(%+v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		in   Color
		want color.NRGBA
	}{
		{"white", color.NRGBA{255, 255, 255, 255}},
		{"gold", color.NRGBA{255, 215, 0, 255}},
		{"#FF4D6D", color.NRGBA{0xFF, 0x4D, 0x6D, 0xFF}},
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#00000080", color.NRGBA{0, 0, 0, 0x80}},
	}
	for _, tt := range tests {
		got, err := tt.in.RGBA()
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []Color{"", "#12", "notacolor", "#GGGGGG"} {
		if _, err := bad.RGBA(); err == nil {
			t.Errorf("%q should fail", bad)
		}
	}
}

func TestOverlayActive(t *testing.T) {
	o := Overlay{Start: 10, End: 15}
	for _, tc := range []struct {
		t    float64
		want bool
	}{{9.99, false}, {10, true}, {14.99, true}, {15, false}} {
		if got := o.Active(tc.t, 20); got != tc.want {
			t.Errorf("Active(%v) = %v", tc.t, got)
		}
	}

	open := Overlay{Start: 1}
	if !open.Active(4.9, 5) || open.Active(5, 5) {
		t.Error("open-ended overlay should last until the scene ends")
	}
}

package director

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/renderer"
)

func TestBuiltinScripts(t *testing.T) {
	scripts, err := LoadScripts("")
	if err != nil {
		t.Fatalf("LoadScripts failed: %v", err)
	}

	want := []string{"ad_projecteur_89", "ad_body_sculptant_35", "ad_compilation_3cadeaux", "viral_banger_j9"}
	if len(scripts) != len(want) {
		t.Fatalf("expected %d scripts, got %d", len(want), len(scripts))
	}
	for i, s := range scripts {
		if s.Name != want[i] {
			t.Errorf("script %d = %s, want %s", i, s.Name, want[i])
		}
		if s.Badge == nil {
			t.Errorf("%s has no badge", s.Name)
		}
	}

	if got := FilterBatch(scripts, "ads"); len(got) != 3 {
		t.Errorf("ads batch has %d scripts", len(got))
	}
	viral := FilterBatch(scripts, "viral")
	if len(viral) != 1 {
		t.Fatalf("viral batch has %d scripts", len(viral))
	}
	if got := FilterBatch(scripts, ""); len(got) != 4 {
		t.Errorf("empty batch should keep everything")
	}

	// hook 3 + 5 flashes of 0.1/0.08 + reveal 4 + three 1.5s cuts + urgency 3.5 + cta 3.5
	total := 0.0
	for _, sc := range viral[0].Scenes {
		total += sc.Duration
	}
	if total < 19.0 || total > 19.1 {
		t.Errorf("viral script lasts %v", total)
	}
}

func TestScriptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportScripts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("exported %d scripts", len(paths))
	}

	loaded, err := LoadScripts(dir)
	if err != nil {
		t.Fatalf("LoadScripts(%s): %v", dir, err)
	}
	if loaded[3].Scenes[0].Overlays[0].Style != campaign.StyleNeon {
		t.Error("hook overlay should be neon")
	}

	path := filepath.Join(dir, "copy.yaml")
	if err := WriteScript(loaded[0], path); err != nil {
		t.Fatal(err)
	}
	again, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript: %v", err)
	}
	if again.Name != loaded[0].Name || len(again.Scenes) != len(loaded[0].Scenes) {
		t.Errorf("round trip changed the script: %+v", again)
	}
	if again.Scenes[0].Overlays[0].Position != campaign.At(300) {
		t.Errorf("position lost: %+v", again.Scenes[0].Overlays[0].Position)
	}
}

func TestListScripts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := ListScripts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.yml" {
		t.Errorf("ListScripts = %v", paths)
	}

	if _, err := ListScripts(t.TempDir()); err == nil {
		t.Error("empty dir should be an error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Script {
		return &Script{
			Name: "v",
			Scenes: []SceneSpec{
				{Kind: KindImage, Fiche: "fiche_1", Image: "principale", Duration: 5},
				{Kind: KindFlash, Duration: 0.1},
				{Kind: KindColor, Color: "#1A1A2E", Duration: 3},
			},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid script rejected: %v", err)
	}

	tests := map[string]func(s *Script){
		"no name":         func(s *Script) { s.Name = "" },
		"path name":       func(s *Script) { s.Name = "../x" },
		"unknown kind":    func(s *Script) { s.Scenes[0].Kind = "video" },
		"negative":        func(s *Script) { s.Scenes[0].Duration = -1 },
		"image no fiche":  func(s *Script) { s.Scenes[0].Fiche = "" },
		"flash no length": func(s *Script) { s.Scenes[1].Duration = 0 },
		"bad color":       func(s *Script) { s.Scenes[2].Color = "nope" },
		"bad zoom":        func(s *Script) { s.Scenes[0].Zoom = &ZoomSpec{Mode: "spin"} },
		"negative punch":  func(s *Script) { s.Scenes[0].Zoom = &ZoomSpec{Mode: "punch", Peak: 1.2, PunchTime: -0.1} },
		"no keyframes":    func(s *Script) { s.Scenes[0].Zoom = &ZoomSpec{Mode: "keyframes"} },
		"zero keyframe": func(s *Script) {
			s.Scenes[0].Zoom = &ZoomSpec{Mode: "keyframes", Keyframes: []renderer.Keyframe{{Zoom: 1}, {Time: 2}}}
		},
		"negative overlay": func(s *Script) { s.Scenes[0].Overlays = []campaign.Overlay{{Text: "x", Start: -1}} },
		"dim":              func(s *Script) { s.Scenes[0].Dim = 2 },
		"empty badge":      func(s *Script) { s.Badge = &campaign.Overlay{} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	empty := &Script{Name: "e"}
	if err := empty.Validate(); !errors.Is(err, ErrNoScenes) {
		t.Errorf("expected ErrNoScenes, got %v", err)
	}
}

func TestReadScriptInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: x\nscenes:\n  - kind: hologram\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadScript(path)
	if err == nil || !strings.Contains(err.Error(), "hologram") {
		t.Errorf("expected unknown kind error, got %v", err)
	}
}

func TestZoomCurve(t *testing.T) {
	c, err := (&ZoomSpec{Mode: "punch", Start: 1, Peak: 1.2, PunchTime: 0.3}).Curve(2)
	if err != nil {
		t.Fatal(err)
	}
	if c(0) != 1 || c(1) != 1.2 {
		t.Errorf("punch curve: c(0)=%v c(1)=%v", c(0), c(1))
	}

	c, err = (&ZoomSpec{Mode: "linear", End: 1.1}).Curve(5)
	if err != nil {
		t.Fatal(err)
	}
	if c(0) != 1 || c(5) != 1.1 {
		t.Errorf("linear curve: c(0)=%v c(5)=%v", c(0), c(5))
	}
}

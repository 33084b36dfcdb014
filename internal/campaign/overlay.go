package campaign

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Style selects how an overlay is rasterized.
type Style string

const (
	StylePlain Style = "plain"
	StyleNeon  Style = "neon"
	StyleBadge Style = "badge"
	StyleQR    Style = "qr"
)

// Overlay is a timed, positioned element composited over a scene. Start and End
// are seconds on the scene's own clock; End == 0 means "until the scene ends".
type Overlay struct {
	Text     string   `json:"text" yaml:"text"`
	Start    float64  `json:"start" yaml:"start"`
	End      float64  `json:"end" yaml:"end"`
	Position Position `json:"position" yaml:"position"`
	FontSize float64  `json:"font_size" yaml:"font_size"`
	Color    Color    `json:"color" yaml:"color"`

	Style     Style `json:"style,omitempty" yaml:"style,omitempty"`
	GlowColor Color `json:"glow_color,omitempty" yaml:"glow_color,omitempty"`
	Glow      int   `json:"glow,omitempty" yaml:"glow,omitempty"`
	Pulse     bool  `json:"pulse,omitempty" yaml:"pulse,omitempty"`

	// Badge and QR geometry.
	Height     int   `json:"height,omitempty" yaml:"height,omitempty"`
	Background Color `json:"background,omitempty" yaml:"background,omitempty"`
	Gradient   bool  `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	Shadow     bool  `json:"shadow,omitempty" yaml:"shadow,omitempty"`
}

const (
	DefaultFontSize = 50
	DefaultColor    = Color("white")
)

// WithDefaults fills the optional fields the way the campaign copy expects.
func (o Overlay) WithDefaults() Overlay {
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Style == "" {
		o.Style = StylePlain
	}
	return o
}

// Active reports whether the overlay is visible at local time t of a scene
// lasting sceneDur seconds.
func (o Overlay) Active(t, sceneDur float64) bool {
	end := o.End
	if end <= 0 {
		end = sceneDur
	}
	return t >= o.Start && t < end
}

// Anchor names a symbolic placement on one axis. The zero value centers.
type Anchor string

const (
	AnchorCenter Anchor = ""
	AnchorStart  Anchor = "start" // left or top
	AnchorEnd    Anchor = "end"   // right or bottom
	AnchorPixels Anchor = "px"
)

// Coord is a position on one axis: either an anchor or explicit pixels.
type Coord struct {
	Anchor Anchor
	Px     int
}

func Px(v int) Coord { return Coord{Anchor: AnchorPixels, Px: v} }

// Position places an overlay. The zero value centers on both axes.
type Position struct {
	X, Y Coord
}

// At builds a position centered horizontally at pixel row y.
func At(y int) Position { return Position{Y: Px(y)} }

// Resolve returns the top-left corner for an element of size w×h inside a
// frame of size fw×fh.
func (p Position) Resolve(fw, fh, w, h int) image.Point {
	return image.Pt(p.X.resolve(fw, w), p.Y.resolve(fh, h))
}

func (c Coord) resolve(frame, size int) int {
	switch c.Anchor {
	case AnchorPixels:
		return c.Px
	case AnchorStart:
		return 0
	case AnchorEnd:
		return frame - size
	default:
		return (frame - size) / 2
	}
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	pos, err := parsePosition(v)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

func (p *Position) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	pos, err := parsePosition(v)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.X.value("x"), p.Y.value("y")})
}

func (p Position) MarshalYAML() (any, error) {
	return []any{p.X.value("x"), p.Y.value("y")}, nil
}

func (c Coord) value(axis string) any {
	switch c.Anchor {
	case AnchorPixels:
		return c.Px
	case AnchorStart:
		if axis == "x" {
			return "left"
		}
		return "top"
	case AnchorEnd:
		if axis == "x" {
			return "right"
		}
		return "bottom"
	default:
		return "center"
	}
}

func parsePosition(v any) (Position, error) {
	switch val := v.(type) {
	case nil:
		return Position{}, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "center", "":
			return Position{}, nil
		case "top":
			return Position{Y: Coord{Anchor: AnchorStart}}, nil
		case "bottom":
			return Position{Y: Coord{Anchor: AnchorEnd}}, nil
		case "left":
			return Position{X: Coord{Anchor: AnchorStart}}, nil
		case "right":
			return Position{X: Coord{Anchor: AnchorEnd}}, nil
		}
		return Position{}, fmt.Errorf("unknown position %q", val)
	case []any:
		if len(val) != 2 {
			return Position{}, fmt.Errorf("position needs 2 coordinates, got %d", len(val))
		}
		x, err := parseCoord(val[0], "x")
		if err != nil {
			return Position{}, err
		}
		y, err := parseCoord(val[1], "y")
		if err != nil {
			return Position{}, err
		}
		return Position{X: x, Y: y}, nil
	case map[string]any:
		x, err := parseCoord(val["x"], "x")
		if err != nil {
			return Position{}, err
		}
		y, err := parseCoord(val["y"], "y")
		if err != nil {
			return Position{}, err
		}
		return Position{X: x, Y: y}, nil
	}
	return Position{}, fmt.Errorf("unsupported position %v", v)
}

func parseCoord(v any, axis string) (Coord, error) {
	switch val := v.(type) {
	case nil:
		return Coord{}, nil
	case int:
		return Px(val), nil
	case float64:
		return Px(int(val)), nil
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		switch s {
		case "center", "":
			return Coord{}, nil
		case "left", "top":
			if (s == "left") != (axis == "x") {
				return Coord{}, fmt.Errorf("anchor %q is not valid on the %s axis", s, axis)
			}
			return Coord{Anchor: AnchorStart}, nil
		case "right", "bottom":
			if (s == "right") != (axis == "x") {
				return Coord{}, fmt.Errorf("anchor %q is not valid on the %s axis", s, axis)
			}
			return Coord{Anchor: AnchorEnd}, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return Px(n), nil
		}
		return Coord{}, fmt.Errorf("unknown %s anchor %q", axis, val)
	}
	return Coord{}, fmt.Errorf("unsupported %s coordinate %v", axis, v)
}

// Color is a named color ("gold", "white") or a hex string ("#FF4D6D").
type Color string

// RGBA parses the color. Hex accepts #RGB, #RRGGBB and #RRGGBBAA.
func (c Color) RGBA() (color.NRGBA, error) {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

// MustRGBA parses the color, falling back when it is empty or invalid.
func (c Color) MustRGBA(fallback color.NRGBA) color.NRGBA {
	rgba, err := c.RGBA()
	if err != nil {
		return fallback
	}
	return rgba
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s: %w", h, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrMalformed marks a campaign document that cannot be used at all.
var ErrMalformed = errors.New("malformed campaign document")

const fichePrefix = "fiche_"

// Campaign is the root document. It is read once per run and never mutated.
type Campaign struct {
	Name             string
	Countdown        string
	DeliveryDeadline string
	ShopURL          string
	Fiches           map[string]Fiche
}

// Fiche is one product's asset bundle.
type Fiche struct {
	ID       string            `json:"-"`
	Name     string            `json:"nom,omitempty"`
	Images   map[string]string `json:"images_cj"`
	Overlays []Overlay         `json:"overlays_texte"`
}

// Image returns the URL registered for a role such as "principale".
func (f Fiche) Image(role string) (string, bool) {
	u, ok := f.Images[role]
	return u, ok && u != ""
}

// Load reads and parses the campaign document at path.
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Campaign, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrMalformed)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := &Campaign{Fiches: make(map[string]Fiche)}
	scalars := []struct {
		key      string
		dst      *string
		required bool
	}{
		{"campagne", &c.Name, true},
		{"countdown", &c.Countdown, false},
		{"date_limite_livraison", &c.DeliveryDeadline, false},
		{"lien_boutique", &c.ShopURL, false},
	}
	for _, s := range scalars {
		v, ok := raw[s.key]
		if !ok {
			if s.required {
				return nil, fmt.Errorf("%w: missing %q", ErrMalformed, s.key)
			}
			continue
		}
		if err := json.Unmarshal(v, s.dst); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, s.key, err)
		}
	}

	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: empty %q", ErrMalformed, "campagne")
	}

	for key, v := range raw {
		if !strings.HasPrefix(key, fichePrefix) {
			continue
		}
		var f Fiche
		if err := json.Unmarshal(v, &f); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, key, err)
		}
		f.ID = key
		c.Fiches[key] = f
	}
	return c, nil
}

// Fiche looks a product sheet up by its document key, e.g. "fiche_1_projecteur".
func (c *Campaign) Fiche(id string) (Fiche, bool) {
	f, ok := c.Fiches[id]
	return f, ok
}

func (c *Campaign) FicheIDs() []string {
	ids := make([]string, 0, len(c.Fiches))
	for id := range c.Fiches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Expand substitutes campaign fields into script copy.
func (c *Campaign) Expand(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return strings.NewReplacer(
		"{campagne}", c.Name,
		"{countdown}", c.Countdown,
		"{date_limite_livraison}", c.DeliveryDeadline,
		"{lien_boutique}", c.ShopURL,
	).Replace(s)
}

package tags

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrTagNotFound is returned when a tag name is not in the catalog.
var ErrTagNotFound = errors.New("tag not found")

// DefaultReductionFactor is the multiplicative decay applied to conflicting
// tag weights on every delta application.
const DefaultReductionFactor = 0.7

// #region default-catalog

// DefaultCatalog returns the built-in tag dictionary.
func DefaultCatalog() *Catalog {
	defs := []TagDefinition{
		// Style
		{Name: "sharp", Category: CategoryStyle, Conflicts: []string{"smooth", "soft"},
			RenderEffect: map[string]string{"--aura-border-radius": "2px", "--aura-contrast": "1.15"}},
		{Name: "smooth", Category: CategoryStyle, Conflicts: []string{"sharp", "harsh"},
			RenderEffect: map[string]string{"--aura-border-radius": "12px", "--aura-contrast": "1.0"}},
		{Name: "soft", Category: CategoryStyle, Conflicts: []string{"sharp", "harsh"},
			RenderEffect: map[string]string{"--aura-border-radius": "16px", "--aura-saturation": "0.8"}},
		{Name: "harsh", Category: CategoryStyle, Conflicts: []string{"smooth", "soft"},
			RenderEffect: map[string]string{"--aura-contrast": "1.3", "--aura-saturation": "1.2"}},
		{Name: "calm", Category: CategoryStyle, Conflicts: []string{"energetic", "vibrant"},
			RenderEffect: map[string]string{"--aura-hue-shift": "-15deg", "--aura-animation-scale": "0.7"}},
		{Name: "energetic", Category: CategoryStyle, Conflicts: []string{"calm", "muted"},
			RenderEffect: map[string]string{"--aura-hue-shift": "10deg", "--aura-animation-scale": "1.3"}},

		// Layout
		{Name: "dense", Category: CategoryLayout, Conflicts: []string{"open", "spacious"},
			RenderEffect: map[string]string{"--aura-gap": "4px", "--aura-padding": "6px"}},
		{Name: "open", Category: CategoryLayout, Conflicts: []string{"dense", "compact"},
			RenderEffect: map[string]string{"--aura-gap": "16px", "--aura-padding": "20px"}},
		{Name: "spacious", Category: CategoryLayout, Conflicts: []string{"dense", "compact"},
			RenderEffect: map[string]string{"--aura-gap": "24px", "--aura-padding": "28px"}},
		{Name: "compact", Category: CategoryLayout, Conflicts: []string{"open", "spacious"},
			RenderEffect: map[string]string{"--aura-gap": "6px", "--aura-padding": "8px"}},
		{Name: "focused", Category: CategoryLayout, Conflicts: []string{"scattered"},
			RenderEffect: map[string]string{"--aura-dim-peripheral": "0.6"}},
		{Name: "minimal", Category: CategoryLayout, Conflicts: []string{"complex", "busy"},
			RenderEffect: map[string]string{"--aura-chrome-opacity": "0.4"}},

		// Density
		{Name: "light", Category: CategoryDensity, Conflicts: []string{"heavy", "thick"},
			RenderEffect: map[string]string{"--aura-font-weight": "300", "--aura-border-width": "1px"}},
		{Name: "heavy", Category: CategoryDensity, Conflicts: []string{"light", "thin"},
			RenderEffect: map[string]string{"--aura-font-weight": "600", "--aura-border-width": "2px"}},
		{Name: "thin", Category: CategoryDensity, Conflicts: []string{"heavy", "thick"},
			RenderEffect: map[string]string{"--aura-font-weight": "200"}},
		{Name: "thick", Category: CategoryDensity, Conflicts: []string{"light", "thin"},
			RenderEffect: map[string]string{"--aura-font-weight": "700"}},

		// Mood
		{Name: "relaxed", Category: CategoryMood, Conflicts: []string{"tense", "urgent"},
			RenderEffect: map[string]string{"--aura-transition-ms": "450"}},
		{Name: "alert", Category: CategoryMood, Conflicts: []string{"drowsy", "passive"},
			RenderEffect: map[string]string{"--aura-transition-ms": "150", "--aura-accent-intensity": "1.2"}},
		{Name: "urgent", Category: CategoryMood, Conflicts: []string{"relaxed", "calm"},
			RenderEffect: map[string]string{"--aura-transition-ms": "100", "--aura-accent-intensity": "1.4"}},
		{Name: "passive", Category: CategoryMood, Conflicts: []string{"alert", "active"},
			RenderEffect: map[string]string{"--aura-accent-intensity": "0.7"}},
	}
	c := &Catalog{defs: make(map[string]TagDefinition, len(defs))}
	for _, d := range defs {
		c.register(d)
	}
	return c
}

// #endregion default-catalog

// #region load

type catalogFile struct {
	Tags []TagDefinition `yaml:"tags"`
}

// LoadCatalog parses a YAML tag dictionary. An empty document yields an
// empty catalog; callers wanting the built-ins use DefaultCatalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tag catalog: %w", err)
	}
	c := &Catalog{defs: make(map[string]TagDefinition, len(f.Tags))}
	for _, d := range f.Tags {
		if d.Name == "" {
			return nil, fmt.Errorf("tag catalog: entry with empty name")
		}
		if _, dup := c.defs[d.Name]; dup {
			return nil, fmt.Errorf("tag catalog: duplicate tag %q", d.Name)
		}
		c.register(d)
	}
	return c, nil
}

func (c *Catalog) register(d TagDefinition) {
	c.defs[d.Name] = d
	c.order = append(c.order, d.Name)
}

// #endregion load

// #region resolve

// Resolve looks up a tag definition by name.
func (c *Catalog) Resolve(name string) (TagDefinition, error) {
	d, ok := c.defs[name]
	if !ok {
		return TagDefinition{}, fmt.Errorf("resolve %q: %w", name, ErrTagNotFound)
	}
	return d, nil
}

// #endregion resolve

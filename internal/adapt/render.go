package adapt

import (
	"fmt"
	"time"
)

// #region render-target

// ThemeChange is one coherent batch of theme-variable writes, with a hint
// for how long the client should animate toward the new values.
type ThemeChange struct {
	Vars     map[string]string
	Duration time.Duration
}

// RenderTarget receives theme changes. In a browser this backs CSS custom
// properties; ThemeMap is the in-memory stand-in.
type RenderTarget interface {
	Apply(change ThemeChange)
}

// ThemeMap is the in-memory RenderTarget. Not safe for concurrent use.
type ThemeMap struct {
	vars    map[string]string
	applied int
}

// NewThemeMap returns an empty theme variable map.
func NewThemeMap() *ThemeMap {
	return &ThemeMap{vars: map[string]string{}}
}

// Apply merges the change into the variable map.
func (m *ThemeMap) Apply(change ThemeChange) {
	for k, v := range change.Vars {
		m.vars[k] = v
	}
	m.applied++
}

// Get returns a variable's current value.
func (m *ThemeMap) Get(name string) string { return m.vars[name] }

// Snapshot copies the current variables.
func (m *ThemeMap) Snapshot() map[string]string {
	out := make(map[string]string, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}

// Applied returns how many coherent changes have been applied.
func (m *ThemeMap) Applied() int { return m.applied }

// #endregion render-target

// #region palettes

// Palette names a color scheme.
type Palette string

const (
	PaletteCalming      Palette = "calming"
	PaletteEnergizing   Palette = "energizing"
	PaletteWarm         Palette = "warm"
	PaletteCool         Palette = "cool"
	PaletteHighContrast Palette = "high_contrast"
	PaletteDefault      Palette = "default"
)

// HSL is a fixed hue/saturation/lightness triple.
type HSL struct {
	Hue        int
	Saturation float64
	Lightness  float64
}

var palettes = map[Palette]HSL{
	PaletteCalming:      {Hue: 200, Saturation: 0.35, Lightness: 0.62},
	PaletteEnergizing:   {Hue: 18, Saturation: 0.75, Lightness: 0.55},
	PaletteWarm:         {Hue: 36, Saturation: 0.55, Lightness: 0.58},
	PaletteCool:         {Hue: 220, Saturation: 0.45, Lightness: 0.55},
	PaletteHighContrast: {Hue: 0, Saturation: 0.0, Lightness: 0.98},
	PaletteDefault:      {Hue: 210, Saturation: 0.15, Lightness: 0.5},
}

// PaletteHSL resolves a named palette.
func PaletteHSL(p Palette) (HSL, error) {
	hsl, ok := palettes[p]
	if !ok {
		return HSL{}, fmt.Errorf("unknown palette %q", p)
	}
	return hsl, nil
}

// #endregion palettes

// #region density

// DensityLevel names a layout density.
type DensityLevel string

const (
	DensityMinimal       DensityLevel = "minimal"
	DensitySimplified    DensityLevel = "simplified"
	DensityDetailed      DensityLevel = "detailed"
	DensityComprehensive DensityLevel = "comprehensive"
	DensityDefault       DensityLevel = "default"
)

// DensitySpec holds the multipliers and visibility threshold for a level.
// Elements with a visibility rank above the threshold are hidden.
type DensitySpec struct {
	DensityScale        float64
	SpacingScale        float64
	VisibilityThreshold int
}

var densities = map[DensityLevel]DensitySpec{
	DensityMinimal:       {DensityScale: 0.5, SpacingScale: 1.5, VisibilityThreshold: 3},
	DensitySimplified:    {DensityScale: 0.7, SpacingScale: 1.3, VisibilityThreshold: 5},
	DensityDetailed:      {DensityScale: 1.2, SpacingScale: 0.9, VisibilityThreshold: 8},
	DensityComprehensive: {DensityScale: 1.4, SpacingScale: 0.8, VisibilityThreshold: 10},
	DensityDefault:       {DensityScale: 1.0, SpacingScale: 1.0, VisibilityThreshold: 10},
}

// DensityFor resolves a named density level.
func DensityFor(d DensityLevel) (DensitySpec, error) {
	spec, ok := densities[d]
	if !ok {
		return DensitySpec{}, fmt.Errorf("unknown density level %q", d)
	}
	return spec, nil
}

// #endregion density

package tags

// #region category
// Category groups tags by the aspect of the interface they influence.
type Category string

const (
	CategoryStyle   Category = "style"
	CategoryLayout  Category = "layout"
	CategoryDensity Category = "density"
	CategoryMood    Category = "mood"
)

// #endregion category

// #region tag-definition
// TagDefinition is the immutable part of a tag: its identity, the tags it
// conflicts with, and the theme variables it drives when weighted up.
// Weights live separately in a per-session Weights map.
type TagDefinition struct {
	Name         string            `yaml:"name"`
	Category     Category          `yaml:"category"`
	Conflicts    []string          `yaml:"conflicts"`
	RenderEffect map[string]string `yaml:"render"`
}

// #endregion tag-definition

// #region catalog
// Catalog is the shared, read-only tag dictionary loaded once at startup.
// Safe for concurrent use by multiple sessions.
type Catalog struct {
	defs  map[string]TagDefinition
	order []string
}

// Names returns tag names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered tags.
func (c *Catalog) Len() int {
	return len(c.order)
}

// #endregion catalog

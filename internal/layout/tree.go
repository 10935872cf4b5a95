package layout

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/elitecommand/aura-session/internal/tags"
)

// ErrElementNotFound is returned for lookups of unknown element ids.
var ErrElementNotFound = errors.New("element not found")

// DefaultPropagationFactor blends a parent's tag weights into its children
// after a change.
const DefaultPropagationFactor = 0.3

// #region tree

// Tree is one session's mutable layout state: a rooted, acyclic element
// hierarchy. Not safe for concurrent use.
type Tree struct {
	elements map[string]*Element
	rootID   string
}

// Root returns the root element id.
func (t *Tree) Root() string { return t.rootID }

// Element looks up an element by id.
func (t *Tree) Element(id string) (*Element, error) {
	e, ok := t.elements[id]
	if !ok {
		return nil, fmt.Errorf("element %q: %w", id, ErrElementNotFound)
	}
	return e, nil
}

// IDs returns all element ids.
func (t *Tree) IDs() []string {
	out := make([]string, 0, len(t.elements))
	for id := range t.elements {
		out = append(out, id)
	}
	return out
}

// SnapshotWeights deep-copies every element's tag weights, keyed by element
// id, for later restore.
func (t *Tree) SnapshotWeights() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(t.elements))
	for id, e := range t.elements {
		w := make(map[string]float64, len(e.TagWeights))
		for name, v := range e.TagWeights {
			w[name] = v
		}
		out[id] = w
	}
	return out
}

// RestoreWeights overwrites element tag weights from a snapshot. Elements
// absent from the snapshot are left untouched.
func (t *Tree) RestoreWeights(snap map[string]map[string]float64) {
	for id, weights := range snap {
		e, ok := t.elements[id]
		if !ok {
			continue
		}
		w := make(map[string]float64, len(weights))
		for name, v := range weights {
			w[name] = v
		}
		e.TagWeights = w
	}
}

// #endregion tree

// #region default-tree

// DefaultTree returns the built-in dashboard layout.
func DefaultTree() *Tree {
	t, err := buildTree([]*Element{
		{ID: "dashboard", Type: "container", AdaptationPriority: PriorityHigh, VisibilityRank: 1,
			TagWeights: map[string]float64{"minimal": 0.3, "focused": 0.5}},
		{ID: "header", Type: "panel", ParentID: "dashboard", AdaptationPriority: PriorityMedium, VisibilityRank: 2,
			TagWeights: map[string]float64{"compact": 0.4}},
		{ID: "main_content", Type: "container", ParentID: "dashboard", AdaptationPriority: PriorityHigh, VisibilityRank: 1,
			TagWeights: map[string]float64{"open": 0.6}},
		{ID: "sidebar", Type: "panel", ParentID: "dashboard", AdaptationPriority: PriorityLow, VisibilityRank: 6,
			TagWeights: map[string]float64{"dense": 0.3}},
		{ID: "alert_center", Type: "panel", ParentID: "main_content", AdaptationPriority: PriorityCritical, VisibilityRank: 1,
			TagWeights: map[string]float64{"alert": 0.6}},
		{ID: "risk_indicators", Type: "card", ParentID: "main_content", AdaptationPriority: PriorityCritical, VisibilityRank: 2,
			TagWeights: map[string]float64{"urgent": 0.4}},
		{ID: "metrics_grid", Type: "card", ParentID: "main_content", AdaptationPriority: PriorityMedium, VisibilityRank: 4,
			TagWeights: map[string]float64{"dense": 0.5}},
		{ID: "activity_feed", Type: "card", ParentID: "sidebar", AdaptationPriority: PriorityLow, VisibilityRank: 9,
			TagWeights: map[string]float64{"passive": 0.3}},
	})
	if err != nil {
		// Built-in layout is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return t
}

// #endregion default-tree

// #region load

type treeFile struct {
	Elements []*Element `yaml:"elements"`
}

// Load parses a YAML layout tree and validates its structure.
func Load(data []byte) (*Tree, error) {
	var f treeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse layout tree: %w", err)
	}
	return buildTree(f.Elements)
}

func buildTree(elems []*Element) (*Tree, error) {
	t := &Tree{elements: make(map[string]*Element, len(elems))}
	for _, e := range elems {
		if e.ID == "" {
			return nil, fmt.Errorf("layout tree: element with empty id")
		}
		if _, dup := t.elements[e.ID]; dup {
			return nil, fmt.Errorf("layout tree: duplicate element %q", e.ID)
		}
		if e.TagWeights == nil {
			e.TagWeights = map[string]float64{}
		}
		if e.AdaptationPriority == "" {
			e.AdaptationPriority = PriorityMedium
		}
		if e.VisibilityRank == 0 {
			e.VisibilityRank = 5
		}
		e.Children = nil
		t.elements[e.ID] = e
	}

	for _, e := range t.elements {
		if e.ParentID == "" {
			if t.rootID != "" {
				return nil, fmt.Errorf("layout tree: multiple roots (%q and %q)", t.rootID, e.ID)
			}
			t.rootID = e.ID
			continue
		}
		parent, ok := t.elements[e.ParentID]
		if !ok {
			return nil, fmt.Errorf("layout tree: element %q references missing parent %q", e.ID, e.ParentID)
		}
		parent.Children = append(parent.Children, e.ID)
	}
	if t.rootID == "" {
		return nil, fmt.Errorf("layout tree: no root element")
	}

	// Reachability from the root doubles as the acyclicity check: every
	// non-root element has exactly one parent edge, so an unreachable
	// element implies a cycle.
	seen := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, c := range t.elements[id].Children {
			walk(c)
		}
	}
	walk(t.rootID)
	if len(seen) != len(t.elements) {
		return nil, fmt.Errorf("layout tree: %d element(s) unreachable from root (cycle?)", len(t.elements)-len(seen))
	}

	return t, nil
}

// #endregion load

// #region apply

// ApplyTagDeltas applies tag-weight deltas to one element, scaled by the
// element's priority multiplier, and resolves conflicts per the catalog.
func (t *Tree) ApplyTagDeltas(id string, deltas map[string]float64, catalog *tags.Catalog, reductionFactor float64) error {
	e, err := t.Element(id)
	if err != nil {
		return err
	}
	mult := e.AdaptationPriority.Multiplier()

	for name, delta := range deltas {
		def, rerr := catalog.Resolve(name)
		if rerr != nil {
			return fmt.Errorf("apply to %q: %w", id, rerr)
		}
		e.TagWeights[name] = clamp01(e.TagWeights[name] + delta*mult)
		for _, conflict := range def.Conflicts {
			if cur, present := e.TagWeights[conflict]; present && cur != 0 {
				e.TagWeights[conflict] = clamp01(cur * reductionFactor)
			}
		}
	}
	return nil
}

// Propagate blends an element's tag weights into its children:
// child = child*(1-factor) + parent*factor, for tags the child already has.
// Recurses depth-first so changes reach the whole subtree.
func (t *Tree) Propagate(id string, factor float64) error {
	e, err := t.Element(id)
	if err != nil {
		return err
	}
	if factor <= 0 {
		return nil
	}
	for _, childID := range e.Children {
		child := t.elements[childID]
		for name, w := range e.TagWeights {
			if cur, present := child.TagWeights[name]; present {
				child.TagWeights[name] = clamp01(cur*(1-factor) + w*factor)
			}
		}
		if err := t.Propagate(childID, factor); err != nil {
			return err
		}
	}
	return nil
}

// VisibleAt reports whether the element stays visible at a density
// visibility threshold: elements ranked above the threshold are hidden.
func (e *Element) VisibleAt(threshold int) bool {
	return e.VisibilityRank <= threshold
}

// #endregion apply

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

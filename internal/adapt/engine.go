package adapt

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/layout"
	"github.com/elitecommand/aura-session/internal/tags"
)

// #region engine

// ProvenanceSink receives a record for every applied or rejected adaptation.
type ProvenanceSink interface {
	Record(rec ProvenanceRecord) error
}

// Engine owns one session's adaptive UI state: channel values, session tag
// weights, the layout tree, and the admission gate. Not safe for concurrent
// use; the orchestrator serializes access.
type Engine struct {
	cfg     Config
	catalog *tags.Catalog
	weights *tags.Weights
	tree    *layout.Tree
	target  RenderTarget
	gate    *Gate
	log     *zap.Logger
	prov    ProvenanceSink

	state UIState
	undo  undoStack
	hist  history

	now func() time.Time
}

// NewEngine builds an engine over a shared catalog and a per-session tree.
func NewEngine(cfg Config, catalog *tags.Catalog, tree *layout.Tree, target RenderTarget, log *zap.Logger) *Engine {
	cfg.defaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		catalog: catalog,
		weights: tags.NewWeightsWithFactor(catalog, cfg.ReductionFactor),
		tree:    tree,
		target:  target,
		gate:    NewGate(cfg.MaxAdaptationsPerMinute, cfg.Cooldown),
		log:     log,
		state:   DefaultUIState(),
		undo:    undoStack{max: 10},
		hist:    history{max: 100},
		now:     time.Now,
	}
}

// SetClock overrides the engine's clock. Tests use this to drive cooldown
// and rate-limit windows deterministically.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// SetProvenance attaches an adaptation log.
func (e *Engine) SetProvenance(p ProvenanceSink) { e.prov = p }

// State returns the current channel values.
func (e *Engine) State() UIState { return e.state }

// Weights returns the session tag weights.
func (e *Engine) Weights() *tags.Weights { return e.weights }

// Tree returns the session layout tree.
func (e *Engine) Tree() *layout.Tree { return e.tree }

// UndoDepth reports how many applications can currently be reverted.
func (e *Engine) UndoDepth() int { return e.undo.depth() }

// History returns applied adaptations, oldest first, at most the last 100.
func (e *Engine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.hist.entries))
	copy(out, e.hist.entries)
	return out
}

// #endregion engine

// #region apply

// Apply runs one adaptation through the gate, the type-specific transform,
// and the render target. On rejection nothing changes; on transform failure
// the pre-transform snapshot is restored before the error is returned.
func (e *Engine) Apply(a Adaptation) error {
	if a.Params == nil {
		return fmt.Errorf("adaptation has no params")
	}
	now := e.now()
	t := a.Type()

	if err := e.gate.Admit(now, t); err != nil {
		e.log.Debug("adaptation gated",
			zap.String("type", string(t)),
			zap.Error(err))
		e.record(now, t, a.Source, "rejected", err.Error())
		return err
	}

	snap := e.snapshot()
	vars, err := e.transform(a)
	if err != nil {
		e.restore(snap)
		terr := &TransformError{Type: t, Err: err}
		e.log.Warn("adaptation transform failed",
			zap.String("type", string(t)),
			zap.Error(err))
		e.record(now, t, a.Source, "failed", err.Error())
		return terr
	}

	e.target.Apply(ThemeChange{Vars: vars, Duration: e.cfg.AnimationDuration})
	e.undo.push(snap)
	e.gate.Record(now, t)
	e.hist.add(HistoryEntry{At: now, Adaptation: a})
	e.record(now, t, a.Source, "applied", "")
	e.log.Info("adaptation applied",
		zap.String("type", string(t)),
		zap.String("source", string(a.Source)),
		zap.Float64("confidence", a.Confidence))
	return nil
}

// ApplyTagDeltas applies tag-weight deltas to one element and to the session
// weights, resolves conflicts, propagates down the subtree, and re-renders
// any tags whose weight crossed the activation threshold. Counts against the
// global rate limit but has no per-channel cooldown.
func (e *Engine) ApplyTagDeltas(elementID string, deltas map[string]float64, source Source) error {
	now := e.now()
	if err := e.gate.AdmitUntyped(now); err != nil {
		e.log.Debug("tag deltas gated", zap.String("element", elementID), zap.Error(err))
		e.record(now, "", source, "rejected", err.Error())
		return err
	}

	snap := e.snapshot()
	for name, delta := range deltas {
		if err := e.weights.ApplyDelta(name, delta); err != nil {
			e.restore(snap)
			return fmt.Errorf("session weights: %w", err)
		}
	}
	if err := e.tree.ApplyTagDeltas(elementID, deltas, e.catalog, e.cfg.ReductionFactor); err != nil {
		e.restore(snap)
		return err
	}
	if err := e.tree.Propagate(elementID, e.cfg.PropagationFactor); err != nil {
		e.restore(snap)
		return err
	}

	if vars := e.activeTagVars(); len(vars) > 0 {
		e.target.Apply(ThemeChange{Vars: vars, Duration: e.cfg.AnimationDuration})
	}
	e.undo.push(snap)
	e.gate.RecordUntyped(now)
	e.record(now, "", source, "applied", fmt.Sprintf("tag deltas on %s", elementID))
	e.log.Info("tag deltas applied",
		zap.String("element", elementID),
		zap.Int("tags", len(deltas)),
		zap.String("source", string(source)))
	return nil
}

// Revert undoes the most recent application. It is a no-op returning false
// when the undo stack is empty.
func (e *Engine) Revert() bool {
	snap, ok := e.undo.pop()
	if !ok {
		return false
	}
	e.restore(snap)
	e.target.Apply(ThemeChange{Vars: e.renderState(), Duration: e.cfg.AnimationDuration})
	e.log.Info("adaptation reverted", zap.Int("undo_depth", e.undo.depth()))
	return true
}

func (e *Engine) snapshot() snapshot {
	return snapshot{
		state:   e.state,
		weights: e.weights.Snapshot(),
		tree:    e.tree.SnapshotWeights(),
	}
}

func (e *Engine) restore(s snapshot) {
	e.state = s.state
	e.weights.Restore(s.weights)
	e.tree.RestoreWeights(s.tree)
}

func (e *Engine) record(at time.Time, t Type, src Source, outcome, detail string) {
	if e.prov == nil {
		return
	}
	if err := e.prov.Record(ProvenanceRecord{
		At:      at,
		Type:    t,
		Source:  src,
		Outcome: outcome,
		Detail:  detail,
	}); err != nil {
		e.log.Warn("provenance record failed", zap.Error(err))
	}
}

// #endregion apply

// #region transforms

// transform mutates channel state and returns the theme variables to write.
// The switch is exhaustive over the closed Params union.
func (e *Engine) transform(a Adaptation) (map[string]string, error) {
	switch p := a.Params.(type) {
	case ColorSchemeParams:
		return e.transformColorScheme(p)
	case TypographyParams:
		return e.transformTypography(p)
	case LayoutDensityParams:
		return e.transformLayoutDensity(p)
	case InformationFilteringParams:
		return e.transformInformationFiltering(p)
	case InteractionSpeedParams:
		return e.transformInteractionSpeed(p)
	case ContentPrioritizationParams:
		return e.transformContentPrioritization(p)
	case AutomationLevelParams:
		return e.transformAutomationLevel(p)
	case FeedbackIntensityParams:
		return e.transformFeedbackIntensity(p)
	default:
		return nil, fmt.Errorf("unknown params type %T", a.Params)
	}
}

func (e *Engine) transformColorScheme(p ColorSchemeParams) (map[string]string, error) {
	hsl, err := PaletteHSL(p.Scheme)
	if err != nil {
		return nil, err
	}
	e.state.ColorScheme = p.Scheme
	return map[string]string{
		"--aura-color-scheme": string(p.Scheme),
		"--aura-primary-h":    fmt.Sprintf("%d", hsl.Hue),
		"--aura-primary-s":    fmt.Sprintf("%.0f%%", hsl.Saturation*100),
		"--aura-primary-l":    fmt.Sprintf("%.0f%%", hsl.Lightness*100),
	}, nil
}

func (e *Engine) transformTypography(p TypographyParams) (map[string]string, error) {
	if p.SizeScale < 0.5 || p.SizeScale > 2.0 {
		return nil, fmt.Errorf("size scale %.2f outside [0.5, 2.0]", p.SizeScale)
	}
	if p.SpacingScale < 0.5 || p.SpacingScale > 2.0 {
		return nil, fmt.Errorf("spacing scale %.2f outside [0.5, 2.0]", p.SpacingScale)
	}
	e.state.FontSizeScale = p.SizeScale
	e.state.SpacingScale = p.SpacingScale
	return map[string]string{
		"--aura-font-scale":    fmt.Sprintf("%.2f", p.SizeScale),
		"--aura-spacing-scale": fmt.Sprintf("%.2f", p.SpacingScale),
	}, nil
}

func (e *Engine) transformLayoutDensity(p LayoutDensityParams) (map[string]string, error) {
	spec, err := DensityFor(p.Density)
	if err != nil {
		return nil, err
	}
	e.state.LayoutDensity = p.Density
	return map[string]string{
		"--aura-density":              string(p.Density),
		"--aura-density-scale":        fmt.Sprintf("%.2f", spec.DensityScale),
		"--aura-density-spacing":      fmt.Sprintf("%.2f", spec.SpacingScale),
		"--aura-visibility-threshold": fmt.Sprintf("%d", spec.VisibilityThreshold),
	}, nil
}

func (e *Engine) transformInformationFiltering(p InformationFilteringParams) (map[string]string, error) {
	switch p.FilterLevel {
	case FilterEssentialOnly, FilterHighPriority, FilterComprehensive, FilterDefault:
	default:
		return nil, fmt.Errorf("unknown filter level %q", p.FilterLevel)
	}
	e.state.FilterLevel = string(p.FilterLevel)
	return map[string]string{"--aura-filter-level": string(p.FilterLevel)}, nil
}

func (e *Engine) transformInteractionSpeed(p InteractionSpeedParams) (map[string]string, error) {
	var base float64
	switch p.Speed {
	case SpeedRelaxed:
		base = 1.3
	case SpeedStandard:
		base = 1.0
	case SpeedBrisk:
		base = 0.7
	default:
		return nil, fmt.Errorf("unknown speed level %q", p.Speed)
	}
	e.state.SpeedFactor = base * e.cfg.SpeedMultiplier
	return map[string]string{
		"--aura-transition-scale": fmt.Sprintf("%.2f", e.state.SpeedFactor),
	}, nil
}

func (e *Engine) transformContentPrioritization(p ContentPrioritizationParams) (map[string]string, error) {
	e.state.Highlight = p.HighlightImportant
	e.state.FocusMode = p.FocusMode
	e.state.Comparison = p.ComparisonMode
	return map[string]string{
		"--aura-highlight":  boolVar(p.HighlightImportant),
		"--aura-focus-mode": boolVar(p.FocusMode),
		"--aura-comparison": boolVar(p.ComparisonMode),
	}, nil
}

func (e *Engine) transformAutomationLevel(p AutomationLevelParams) (map[string]string, error) {
	switch p.Level {
	case AutomationMinimal, AutomationStandard, AutomationIncreased:
	default:
		return nil, fmt.Errorf("unknown automation grade %q", p.Level)
	}
	e.state.Automation = string(p.Level)
	return map[string]string{"--aura-automation": string(p.Level)}, nil
}

func (e *Engine) transformFeedbackIntensity(p FeedbackIntensityParams) (map[string]string, error) {
	switch p.Intensity {
	case "reduced", "standard", "enhanced":
	default:
		return nil, fmt.Errorf("unknown feedback intensity %q", p.Intensity)
	}
	e.state.Feedback = p.Intensity
	e.state.Explanations = p.Explanations
	e.state.Guidance = p.Guidance
	return map[string]string{
		"--aura-feedback":     p.Intensity,
		"--aura-explanations": boolVar(p.Explanations),
		"--aura-guidance":     boolVar(p.Guidance),
	}, nil
}

func boolVar(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// #endregion transforms

// #region render

// renderState recomputes every channel's theme variables from current state.
// Used after a revert, when the variables written by the undone adaptation
// must be rolled back wholesale.
func (e *Engine) renderState() map[string]string {
	vars := map[string]string{}
	if hsl, err := PaletteHSL(e.state.ColorScheme); err == nil {
		vars["--aura-color-scheme"] = string(e.state.ColorScheme)
		vars["--aura-primary-h"] = fmt.Sprintf("%d", hsl.Hue)
		vars["--aura-primary-s"] = fmt.Sprintf("%.0f%%", hsl.Saturation*100)
		vars["--aura-primary-l"] = fmt.Sprintf("%.0f%%", hsl.Lightness*100)
	}
	vars["--aura-font-scale"] = fmt.Sprintf("%.2f", e.state.FontSizeScale)
	vars["--aura-spacing-scale"] = fmt.Sprintf("%.2f", e.state.SpacingScale)
	if spec, err := DensityFor(e.state.LayoutDensity); err == nil {
		vars["--aura-density"] = string(e.state.LayoutDensity)
		vars["--aura-density-scale"] = fmt.Sprintf("%.2f", spec.DensityScale)
		vars["--aura-density-spacing"] = fmt.Sprintf("%.2f", spec.SpacingScale)
		vars["--aura-visibility-threshold"] = fmt.Sprintf("%d", spec.VisibilityThreshold)
	}
	vars["--aura-filter-level"] = e.state.FilterLevel
	vars["--aura-transition-scale"] = fmt.Sprintf("%.2f", e.state.SpeedFactor)
	vars["--aura-highlight"] = boolVar(e.state.Highlight)
	vars["--aura-focus-mode"] = boolVar(e.state.FocusMode)
	vars["--aura-comparison"] = boolVar(e.state.Comparison)
	vars["--aura-automation"] = e.state.Automation
	vars["--aura-feedback"] = e.state.Feedback
	vars["--aura-explanations"] = boolVar(e.state.Explanations)
	vars["--aura-guidance"] = boolVar(e.state.Guidance)
	for k, v := range e.activeTagVars() {
		vars[k] = v
	}
	return vars
}

// activeTagVars merges the render effects of every session tag whose weight
// exceeds the activation threshold, in catalog order so later tags win ties.
func (e *Engine) activeTagVars() map[string]string {
	vars := map[string]string{}
	for _, name := range e.catalog.Names() {
		if e.weights.Get(name) <= e.cfg.TagActivationThreshold {
			continue
		}
		def, err := e.catalog.Resolve(name)
		if err != nil {
			continue
		}
		for k, v := range def.RenderEffect {
			vars[k] = v
		}
	}
	return vars
}

// VisibleElements returns the ids of elements shown at the current layout
// density, per their visibility rank.
func (e *Engine) VisibleElements() []string {
	spec, err := DensityFor(e.state.LayoutDensity)
	if err != nil {
		spec = densities[DensityDefault]
	}
	var out []string
	for _, id := range e.tree.IDs() {
		el, err := e.tree.Element(id)
		if err != nil {
			continue
		}
		if el.VisibleAt(spec.VisibilityThreshold) {
			out = append(out, id)
		}
	}
	return out
}

// #endregion render

package adapt

import (
	"errors"

	"github.com/elitecommand/aura-session/internal/capture"
)

// #region signals

// SignalKind names a derived wellbeing condition.
type SignalKind string

const (
	SignalFatigue        SignalKind = "fatigue"
	SignalStress         SignalKind = "stress"
	SignalEyeStrain      SignalKind = "eye_strain"
	SignalAttentionDrift SignalKind = "attention_drift"
)

// Signal is one derived condition with its strength and the confidence of
// the reading it came from.
type Signal struct {
	Kind       SignalKind
	Intensity  float64
	Confidence float64
}

// Actionable reports whether a signal is strong and trusted enough to drive
// tag changes: intensity above 0.6 and confidence above 0.7.
func (s Signal) Actionable() bool {
	return s.Intensity > 0.6 && s.Confidence > 0.7
}

// #endregion signals

// #region derive

// DeriveSignals turns one capture reading into the four wellbeing signals.
// Intensities blend the reading's derived scores; every signal inherits the
// reading's confidence.
func DeriveSignals(r capture.Reading) []Signal {
	blinkNorm := clamp01(r.BlinkRate / 0.5)
	pupilNorm := clamp01(r.PupilDiameter)
	return []Signal{
		{Kind: SignalFatigue, Intensity: clamp01(0.6*r.CognitiveLoad + 0.4*blinkNorm), Confidence: r.Confidence},
		{Kind: SignalStress, Intensity: clamp01(r.Stress), Confidence: r.Confidence},
		{Kind: SignalEyeStrain, Intensity: clamp01(0.5*blinkNorm + 0.5*pupilNorm), Confidence: r.Confidence},
		{Kind: SignalAttentionDrift, Intensity: clamp01(1 - r.Attention), Confidence: r.Confidence},
	}
}

// #endregion derive

// #region tag-maps

// signalTagDeltas maps each signal kind to the tag deltas applied when the
// signal is actionable. Deltas are scaled by the signal's intensity before
// application.
var signalTagDeltas = map[SignalKind]map[string]float64{
	SignalFatigue:        {"soft": 0.6, "calm": 0.5, "light": 0.4, "spacious": 0.3},
	SignalStress:         {"calm": 0.7, "smooth": 0.5, "relaxed": 0.6, "minimal": 0.4},
	SignalEyeStrain:      {"soft": 0.8, "light": 0.7, "spacious": 0.5},
	SignalAttentionDrift: {"focused": 0.7, "minimal": 0.6, "alert": 0.4},
}

// avoidTargets are elements biometric-driven changes must never touch:
// safety-critical surfaces keep their configured appearance.
var avoidTargets = map[string]bool{
	"alert_center":    true,
	"risk_indicators": true,
}

// TagDeltasFor returns the scaled tag deltas for a signal, or nil when the
// signal is not actionable.
func TagDeltasFor(s Signal) map[string]float64 {
	if !s.Actionable() {
		return nil
	}
	base, ok := signalTagDeltas[s.Kind]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(base))
	for name, d := range base {
		out[name] = d * s.Intensity
	}
	return out
}

// AvoidTarget reports whether biometric adaptation must skip the element.
func AvoidTarget(elementID string) bool { return avoidTargets[elementID] }

// #endregion tag-maps

// #region react

// React derives signals from a reading and applies the resulting tag deltas
// to the layout root, skipping protected elements. Deltas are scaled by the
// configured biometric sensitivity. Gate rejections are swallowed: a
// rate-limited reaction simply waits for the next reading.
func (e *Engine) React(r capture.Reading, targetElement string) error {
	if AvoidTarget(targetElement) {
		return nil
	}
	for _, sig := range DeriveSignals(r) {
		deltas := TagDeltasFor(sig)
		if deltas == nil {
			continue
		}
		for name := range deltas {
			deltas[name] *= e.cfg.BiometricSensitivity
		}
		if err := e.ApplyTagDeltas(targetElement, deltas, SourceBiometric); err != nil {
			if errors.Is(err, ErrRejected) {
				continue
			}
			return err
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion react

package capture

import "math"

// #region scores

// Derived scores are fixed linear combinations of sub-signals. The exact
// formulas are part of the contract so that replay and the backend agree on
// what the numbers mean:
//
//	attention = 0.5*(1 - blinkNorm) + 0.3*gazeCentrality + 0.2*neutral
//	stress    = 0.5*(angry + fearful + 0.5*sad) + 0.3*pupilNorm + 0.2*blinkNorm
//	cogLoad   = 0.6*pupilNorm + 0.4*(1 - neutral)
//
// blinkNorm is blink rate scaled against 0.5 blinks/s; pupilNorm is the raw
// normalized pupil diameter; gazeCentrality is 1 at screen center falling to
// 0 at the corners. All results clamp to [0,1].

// AttentionScore computes the attention sub-score.
func AttentionScore(e EmotionDist, gazeX, gazeY, blinkRate float64) float64 {
	return clamp01(0.5*(1-blinkNorm(blinkRate)) + 0.3*gazeCentrality(gazeX, gazeY) + 0.2*e.Neutral)
}

// StressScore computes the stress sub-score.
func StressScore(e EmotionDist, pupilDiameter, blinkRate float64) float64 {
	negative := e.Angry + e.Fearful + 0.5*e.Sad
	return clamp01(0.5*negative + 0.3*clamp01(pupilDiameter) + 0.2*blinkNorm(blinkRate))
}

// CognitiveLoadScore computes the cognitive-load sub-score.
func CognitiveLoadScore(e EmotionDist, pupilDiameter float64) float64 {
	return clamp01(0.6*clamp01(pupilDiameter) + 0.4*(1-e.Neutral))
}

// #endregion scores

// #region helpers

func blinkNorm(blinkRate float64) float64 {
	return clamp01(blinkRate / 0.5)
}

// gazeCentrality is 1 when the gaze sits at (0.5, 0.5) and decays linearly
// with distance, hitting 0 at the screen corners.
func gazeCentrality(x, y float64) float64 {
	dx := x - 0.5
	dy := y - 0.5
	dist := math.Sqrt(dx*dx + dy*dy)
	return clamp01(1 - dist*math.Sqrt2)
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

// #endregion helpers

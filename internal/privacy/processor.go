// Package privacy converts raw biometric readings into coarsened, noised
// records fit for local retention and anonymized payloads fit for
// transmission. The raw reading never leaves the process.
package privacy

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/elitecommand/aura-session/internal/capture"
)

// #region processor

// Processor applies the privacy transform for one session. The timestamp
// salt is generated once per processor lifetime and never transmitted.
type Processor struct {
	level    Level
	strength Strength
	salt     [16]byte
	rng      *mrand.Rand
}

// NewProcessor creates a processor with a fresh random salt.
func NewProcessor(level Level, strength Strength) (*Processor, error) {
	switch level {
	case LevelMinimal, LevelStandard, LevelComprehensive:
	case "":
		level = LevelStandard
	default:
		return nil, fmt.Errorf("unknown privacy level %q", level)
	}
	switch strength {
	case StrengthLow, StrengthMedium, StrengthHigh:
	case "":
		strength = StrengthHigh
	default:
		return nil, fmt.Errorf("unknown anonymization strength %q", strength)
	}

	p := &Processor{
		level:    level,
		strength: strength,
		rng:      mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
	if _, err := rand.Read(p.salt[:]); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return p, nil
}

// Level returns the active privacy level.
func (p *Processor) Level() Level { return p.level }

// NoiseLevel returns the active noise magnitude.
func (p *Processor) NoiseLevel() float64 { return p.strength.NoiseLevel() }

// #endregion processor

// #region process

// ProcessPrivately derives the local insight and the backend payload from a
// reading. The reading itself is not mutated or retained.
func (p *Processor) ProcessPrivately(r capture.Reading) (LocalInsight, BackendPayload) {
	attention := p.noise(r.Attention)
	quality := p.noise(r.Confidence)

	insight := LocalInsight{
		ID:             "aura_" + uuid.NewString(),
		Timestamp:      r.Timestamp,
		PrivacyLevel:   p.level,
		AttentionLevel: attention,
		DataQuality:    quality,
	}
	payload := BackendPayload{
		SessionID:       "anonymous",
		HashedTimestamp: p.HashTimestamp(r.Timestamp),
		PrivacyLevel:    p.level,
		AttentionLevel:  attention,
		DataQuality:     quality,
	}

	if p.level == LevelMinimal {
		return insight, payload
	}

	// standard drops raw physiological detail and the gaze pattern but keeps
	// coarsened affect.
	insight.StressCategory = Bucketize(r.Stress)
	insight.CognitiveLoadCategory = Bucketize(r.CognitiveLoad)
	insight.Emotions = p.noisedEmotions(r.Emotions)
	payload.StressCategory = insight.StressCategory
	payload.CognitiveLoadCategory = insight.CognitiveLoadCategory
	payload.Emotions = insight.Emotions

	if p.level == LevelStandard {
		return insight, payload
	}

	insight.GazeZone = GazeZone(r.GazeX, r.GazeY)
	insight.PupilDiameter = p.noise(r.PupilDiameter)
	insight.BlinkRate = p.noise(r.BlinkRate)
	payload.GazeZone = insight.GazeZone

	return insight, payload
}

func (p *Processor) noisedEmotions(e capture.EmotionDist) map[string]float64 {
	return map[string]float64{
		"happy":     p.noise(e.Happy),
		"sad":       p.noise(e.Sad),
		"angry":     p.noise(e.Angry),
		"fearful":   p.noise(e.Fearful),
		"surprised": p.noise(e.Surprised),
		"disgusted": p.noise(e.Disgusted),
		"neutral":   p.noise(e.Neutral),
	}
}

// #endregion process

// #region anonymize

// noise adds symmetric uniform jitter of the configured magnitude, clamped
// to [0,1].
func (p *Processor) noise(v float64) float64 {
	n := p.strength.NoiseLevel()
	v += (p.rng.Float64()*2 - 1) * n
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GazeZone buckets a normalized gaze point into one of nine named zones.
func GazeZone(x, y float64) string {
	col := "center"
	switch {
	case x < 1.0/3:
		col = "left"
	case x >= 2.0/3:
		col = "right"
	}
	row := "middle"
	switch {
	case y < 1.0/3:
		row = "top"
	case y >= 2.0/3:
		row = "bottom"
	}
	return row + "_" + col
}

// HashTimestamp replaces a literal timestamp with a salted one-way hash
// truncated to 16 hex characters. The same timestamp under the same salt
// always yields the same hash.
func (p *Processor) HashTimestamp(t time.Time) string {
	h := sha256.New()
	h.Write(p.salt[:])
	h.Write([]byte(t.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// #endregion anonymize

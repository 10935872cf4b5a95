package adapt

import (
	"fmt"
	"time"
)

// #region gate

// Gate is the admission check in front of every adaptation: a global rolling
// 60-second rate limit across all channels, then a per-channel cooldown.
// Rejections are cheap no-ops; the gate mutates nothing until Admit is
// confirmed with Record.
type Gate struct {
	maxPerMinute int
	cooldown     time.Duration

	window    []time.Time
	cooldowns map[Type]time.Time
}

// NewGate creates a gate.
func NewGate(maxPerMinute int, cooldown time.Duration) *Gate {
	return &Gate{
		maxPerMinute: maxPerMinute,
		cooldown:     cooldown,
		cooldowns:    map[Type]time.Time{},
	}
}

// #endregion gate

// #region admit

// Admit checks whether an adaptation of the given channel may proceed at
// time now. It does not consume rate budget or start a cooldown — callers
// confirm a successful application with Record.
func (g *Gate) Admit(now time.Time, t Type) error {
	g.prune(now)
	if len(g.window) >= g.maxPerMinute {
		return &RejectedError{
			Reason: RejectRateLimited,
			Detail: fmt.Sprintf("%d adaptations in the last 60s (max %d)", len(g.window), g.maxPerMinute),
		}
	}
	if expiry, ok := g.cooldowns[t]; ok && now.Before(expiry) {
		return &RejectedError{
			Reason: RejectCooldown,
			Detail: fmt.Sprintf("%s in cooldown for another %s", t, expiry.Sub(now).Round(time.Millisecond)),
		}
	}
	return nil
}

// Record consumes rate budget and starts the channel's cooldown after a
// successful application.
func (g *Gate) Record(now time.Time, t Type) {
	g.window = append(g.window, now)
	g.cooldowns[t] = now.Add(g.cooldown)
}

// RecordUntyped consumes rate budget without starting any channel cooldown,
// for tag-delta applications that do not belong to a single channel.
func (g *Gate) RecordUntyped(now time.Time) {
	g.window = append(g.window, now)
}

// AdmitUntyped checks only the global rate limit.
func (g *Gate) AdmitUntyped(now time.Time) error {
	g.prune(now)
	if len(g.window) >= g.maxPerMinute {
		return &RejectedError{
			Reason: RejectRateLimited,
			Detail: fmt.Sprintf("%d adaptations in the last 60s (max %d)", len(g.window), g.maxPerMinute),
		}
	}
	return nil
}

func (g *Gate) prune(now time.Time) {
	cutoff := now.Add(-60 * time.Second)
	i := 0
	for ; i < len(g.window); i++ {
		if g.window[i].After(cutoff) {
			break
		}
	}
	g.window = g.window[i:]
}

// #endregion admit

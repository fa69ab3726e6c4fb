// Package loot implements the randomized loot spawn scheduler.
package loot

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// Kind is the effect a loot drop grants on pickup.
type Kind int

const (
	// KindHealing restores a fixed amount of player HP.
	KindHealing Kind = iota
	// KindRapid arms the player's time-limited rapid-attack buff.
	KindRapid
)

// String returns the kind's log name.
func (k Kind) String() string {
	switch k {
	case KindHealing:
		return "healing"
	case KindRapid:
		return "rapid"
	default:
		return "unknown"
	}
}

// Instance is one spawned loot drop, handed to the stage for placement. The
// core tracks identity and kind only; the stage owns geometry and despawn.
type Instance struct {
	ID          string
	Kind        Kind
	PickupRange float64
	TTL         time.Duration
}

// Scheduler decides when loot appears. A single countdown is re-armed to a
// fresh random value in [IntervalMin, IntervalMax] every time it elapses.
// It is not safe for concurrent use; the encounter engine serialises access.
type Scheduler struct {
	tuning    ruleset.LootTuning
	src       rng.Source
	countdown time.Duration
}

// NewScheduler returns a scheduler with its first countdown drawn.
//
// Precondition: tuning has passed ruleset validation; src must not be nil.
func NewScheduler(tuning ruleset.LootTuning, src rng.Source) *Scheduler {
	if src == nil {
		panic("loot: rng source must not be nil")
	}
	s := &Scheduler{tuning: tuning, src: src}
	s.Reset()
	return s
}

// Reset discards the running countdown and draws a fresh one.
func (s *Scheduler) Reset() {
	s.countdown = s.draw()
}

// Tick advances the countdown by dt and returns any instances spawned, in
// order. A tick larger than the countdown carries its remainder into the
// re-armed countdown, so spawn spacing does not depend on tick size.
//
// Precondition: dt >= 0.
func (s *Scheduler) Tick(dt time.Duration) []Instance {
	var spawned []Instance
	for dt >= s.countdown {
		dt -= s.countdown
		s.countdown = s.draw()
		spawned = append(spawned, s.mint())
	}
	s.countdown -= dt
	return spawned
}

func (s *Scheduler) draw() time.Duration {
	return rng.DurationBetween(s.src, s.tuning.IntervalMin, s.tuning.IntervalMax)
}

// mint chooses a kind uniformly and stamps a fresh instance identity.
func (s *Scheduler) mint() Instance {
	kind := KindHealing
	if s.src.Intn(2) == 1 {
		kind = KindRapid
	}
	return Instance{
		ID:          uuid.New().String(),
		Kind:        kind,
		PickupRange: s.tuning.PickupRange,
		TTL:         s.tuning.TTL,
	}
}

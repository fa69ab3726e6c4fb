package ruleset

import (
	"fmt"
	"time"
)

// Phase is a boss difficulty tier derived from remaining HP fraction.
type Phase int

const (
	// PhaseOne covers boss HP above 60%.
	PhaseOne Phase = iota + 1
	// PhaseTwo covers boss HP above 30% up to 60%.
	PhaseTwo
	// PhaseThree covers boss HP at or below 30%.
	PhaseThree
)

// PhaseCount is the number of difficulty phases in a fight.
const PhaseCount = 3

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseOne && p <= PhaseThree
}

// String returns the human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseOne:
		return "phase 1"
	case PhaseTwo:
		return "phase 2"
	case PhaseThree:
		return "phase 3"
	default:
		return "unknown phase"
	}
}

// PhaseForHPFraction returns the difficulty phase for a boss HP fraction.
// Above 0.6 is PhaseOne, above 0.3 is PhaseTwo, otherwise PhaseThree.
//
// Precondition: frac is in [0, 1].
// Postcondition: returns a valid Phase; for any non-increasing HP sequence
// the resulting phase sequence is non-decreasing.
func PhaseForHPFraction(frac float64) Phase {
	switch {
	case frac > 0.6:
		return PhaseOne
	case frac > 0.3:
		return PhaseTwo
	default:
		return PhaseThree
	}
}

// PhaseDef holds the AI pacing parameters for one difficulty phase.
//
// Invariant: immutable after validation.
type PhaseDef struct {
	// Phase is the tier this definition applies to.
	Phase Phase
	// IdleMin and IdleMax bound the randomized idle duration drawn between
	// boss attacks.
	IdleMin time.Duration
	IdleMax time.Duration
	// Speed is the boss movement speed (m/s) during this phase.
	Speed float64
	// EngageRange is the planar distance (meters) the boss tries to hold
	// from the player.
	EngageRange float64
}

// Validate checks that the phase definition satisfies its invariants.
//
// Postcondition: returns nil iff Phase is valid, 0 < IdleMin <= IdleMax,
// Speed > 0, and EngageRange > 0.
func (d PhaseDef) Validate() error {
	if !d.Phase.Valid() {
		return fmt.Errorf("phase def: phase must be in [%d, %d], got %d", PhaseOne, PhaseThree, d.Phase)
	}
	if d.IdleMin <= 0 {
		return fmt.Errorf("%s: idle_min must be > 0, got %s", d.Phase, d.IdleMin)
	}
	if d.IdleMax < d.IdleMin {
		return fmt.Errorf("%s: idle_min (%s) must be <= idle_max (%s)", d.Phase, d.IdleMin, d.IdleMax)
	}
	if d.Speed <= 0 {
		return fmt.Errorf("%s: speed must be > 0, got %f", d.Phase, d.Speed)
	}
	if d.EngageRange <= 0 {
		return fmt.Errorf("%s: engage_range must be > 0, got %f", d.Phase, d.EngageRange)
	}
	return nil
}

// validatePhaseTable checks the full table: exactly one definition per phase
// in ascending order, each individually valid, and pacing strictly escalating
// (later phases never laxer: idle bounds strictly shrink, speed strictly grows).
//
// Precondition: phases is the Tuning.Phases slice.
// Postcondition: returns nil iff the table satisfies every invariant above.
func validatePhaseTable(phases []PhaseDef) error {
	if len(phases) != PhaseCount {
		return fmt.Errorf("phase table: expected %d phases, got %d", PhaseCount, len(phases))
	}
	for i, d := range phases {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("phase table: %w", err)
		}
		if d.Phase != Phase(i+1) {
			return fmt.Errorf("phase table: index %d holds %s, want %s", i, d.Phase, Phase(i+1))
		}
	}
	for i := 1; i < len(phases); i++ {
		prev, cur := phases[i-1], phases[i]
		if cur.IdleMin >= prev.IdleMin || cur.IdleMax >= prev.IdleMax {
			return fmt.Errorf("phase table: %s idle range [%s, %s] must be strictly tighter than %s [%s, %s]",
				cur.Phase, cur.IdleMin, cur.IdleMax, prev.Phase, prev.IdleMin, prev.IdleMax)
		}
		if cur.Speed <= prev.Speed {
			return fmt.Errorf("phase table: %s speed %f must be strictly greater than %s speed %f",
				cur.Phase, cur.Speed, prev.Phase, prev.Speed)
		}
	}
	return nil
}

// Package boss implements the boss AI state machine: timed attack cycles,
// taunts, HP-driven phase escalation, and the dying grace interval.
package boss

import (
	"time"

	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// Boss owns the boss's HP and AI state for one fight. It is not safe for
// concurrent use; the encounter engine serialises access.
//
// Invariant: HP is in [0, MaxHP]; the phase is derived purely from the HP
// fraction and never stored.
type Boss struct {
	tuning ruleset.Tuning
	src    rng.Source

	hp         int
	state      aiState
	lastAttack string
	announced  map[ruleset.Phase]bool
}

// New returns a boss at full HP in the unarmed idle state. BeginFight starts
// the AI clock.
//
// Precondition: tuning has passed ruleset validation; src must not be nil.
func New(tuning ruleset.Tuning, src rng.Source) *Boss {
	if src == nil {
		panic("boss: rng source must not be nil")
	}
	b := &Boss{tuning: tuning, src: src}
	b.Reset()
	return b
}

// Reset restores full HP, clears the last-attack memory and announced-phase
// set, and parks the AI in idle without a countdown. The first phase counts
// as announced so damage inside its band fires no phase event.
//
// Postcondition: StateID() == StateIdle and no time passes until BeginFight.
func (b *Boss) Reset() {
	b.hp = b.tuning.Boss.MaxHP
	b.state = &idleState{}
	b.lastAttack = ""
	b.announced = map[ruleset.Phase]bool{ruleset.PhaseOne: true}
}

// BeginFight arms the first idle countdown, drawn from the current phase's
// range. Calling it again redraws the countdown.
func (b *Boss) BeginFight() {
	b.state = &idleState{countdown: b.drawIdle(), armed: true}
}

// Update advances the AI by dt with the player at playerDistance meters and
// returns the events that occurred, in order. A tick that crosses a state
// boundary carries the remainder into the next state, so total cycle time
// does not depend on tick size.
//
// Precondition: dt >= 0.
func (b *Boss) Update(dt time.Duration, playerDistance float64) []Event {
	var events []Event
	for dt > 0 {
		spent, evs := b.step(dt, playerDistance)
		events = append(events, evs...)
		dt -= spent
	}
	return events
}

// step advances through at most one transition and reports the time spent.
//
// Postcondition: spent is in (0, budget]; spent == budget unless a
// transition consumed less.
func (b *Boss) step(budget time.Duration, playerDistance float64) (time.Duration, []Event) {
	switch s := b.state.(type) {
	case *idleState:
		if !s.armed {
			return budget, nil
		}
		if s.countdown > budget {
			s.countdown -= budget
			return budget, nil
		}
		spent := s.countdown
		if playerDistance > b.tuning.Boss.TauntRange {
			b.state = &tauntingState{remaining: b.tuning.Boss.TauntDuration}
			return spent, []Event{{Kind: EventTaunted}}
		}
		attack := b.selectAttack()
		b.state = &telegraphingState{attack: attack, remaining: attack.Telegraph}
		return spent, []Event{{Kind: EventAttackTelegraphed, Attack: attack}}

	case *tauntingState:
		if s.remaining > budget {
			s.remaining -= budget
			return budget, nil
		}
		spent := s.remaining
		b.state = &idleState{countdown: b.drawIdle(), armed: true}
		return spent, nil

	case *telegraphingState:
		if s.remaining > budget {
			s.remaining -= budget
			return budget, nil
		}
		spent := s.remaining
		b.state = &executingState{attack: s.attack, remaining: s.attack.Execute}
		return spent, []Event{{Kind: EventAttackExecuted, Attack: s.attack}}

	case *executingState:
		if s.remaining > budget {
			s.remaining -= budget
			return budget, nil
		}
		spent := s.remaining
		b.state = &recoveringState{attack: s.attack, remaining: s.attack.Recovery}
		return spent, nil

	case *recoveringState:
		if s.remaining > budget {
			s.remaining -= budget
			return budget, nil
		}
		spent := s.remaining
		b.lastAttack = s.attack.ID
		// The fresh countdown uses the phase the boss is in now, which may
		// have escalated from damage taken during the cycle.
		b.state = &idleState{countdown: b.drawIdle(), armed: true}
		return spent, []Event{{Kind: EventAttackRecovered, Attack: s.attack}}

	case *dyingState:
		if s.remaining > budget {
			s.remaining -= budget
			return budget, nil
		}
		spent := s.remaining
		b.state = &deadState{}
		return spent, nil

	default: // *deadState
		return budget, nil
	}
}

// selectAttack draws uniformly among the attacks unlocked for the current
// phase, excluding the immediately preceding attack. An empty candidate set
// falls back to the tuned fallback attack.
func (b *Boss) selectAttack() ruleset.Attack {
	unlocked := b.tuning.AttacksForPhase(b.Phase())
	candidates := unlocked[:0]
	for _, a := range unlocked {
		if a.ID != b.lastAttack {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		fallback, _ := b.tuning.AttackByID(b.tuning.Boss.FallbackAttack)
		return fallback
	}
	return candidates[b.src.Intn(len(candidates))]
}

func (b *Boss) drawIdle() time.Duration {
	def := b.tuning.PhaseDefFor(b.Phase())
	return rng.DurationBetween(b.src, def.IdleMin, def.IdleMax)
}

// TakeDamage clamps HP down by amount and returns the events that result: a
// phase event the first time a phase is reached, or a death event when HP
// hits zero. Death forces the dying state and suppresses any simultaneous
// phase announcement. Damage after death is ignored.
//
// Postcondition: HP() is in [0, MaxHP()].
func (b *Boss) TakeDamage(amount int) []Event {
	if b.hp == 0 || amount <= 0 {
		return nil
	}
	b.hp -= amount
	if b.hp < 0 {
		b.hp = 0
	}
	if b.hp == 0 {
		b.state = &dyingState{remaining: b.tuning.Boss.DyingDuration}
		return []Event{{Kind: EventDied}}
	}
	phase := b.Phase()
	if !b.announced[phase] {
		b.announced[phase] = true
		return []Event{{Kind: EventPhaseEntered, Phase: phase}}
	}
	return nil
}

// HP returns current health.
func (b *Boss) HP() int { return b.hp }

// MaxHP returns full health.
func (b *Boss) MaxHP() int { return b.tuning.Boss.MaxHP }

// HPFraction returns remaining health as a fraction of full health.
func (b *Boss) HPFraction() float64 {
	return float64(b.hp) / float64(b.tuning.Boss.MaxHP)
}

// Phase returns the difficulty phase derived from the HP fraction.
func (b *Boss) Phase() ruleset.Phase {
	return ruleset.PhaseForHPFraction(b.HPFraction())
}

// StateID returns the current AI state's identity.
func (b *Boss) StateID() StateID { return b.state.id() }

// CurrentAttack returns the attack in flight and true while telegraphing,
// executing, or recovering; the zero Attack and false otherwise.
func (b *Boss) CurrentAttack() (ruleset.Attack, bool) {
	switch s := b.state.(type) {
	case *telegraphingState:
		return s.attack, true
	case *executingState:
		return s.attack, true
	case *recoveringState:
		return s.attack, true
	}
	return ruleset.Attack{}, false
}

// Speed returns the movement speed for the current phase.
func (b *Boss) Speed() float64 {
	return b.tuning.PhaseDefFor(b.Phase()).Speed
}

// EngageRange returns the desired engagement distance for the current phase.
func (b *Boss) EngageRange() float64 {
	return b.tuning.PhaseDefFor(b.Phase()).EngageRange
}

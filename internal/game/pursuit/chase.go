// Package pursuit implements the post-boss spirit chase: an escalating-speed
// pursuer under a fixed countdown, with a catch-and-retreat sub-cycle.
package pursuit

import (
	"time"

	"github.com/kestrelforge/revenant/internal/game/player"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// Outcome is the chase's terminal result.
type Outcome int

const (
	// OutcomeUndecided means the chase is still running.
	OutcomeUndecided Outcome = iota
	// OutcomeVictory means the countdown ran out with the player alive.
	OutcomeVictory
	// OutcomeDefeat means the player's HP reached zero.
	OutcomeDefeat
)

// String returns the outcome's log name.
func (o Outcome) String() string {
	switch o {
	case OutcomeUndecided:
		return "undecided"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// EventKind tags what happened during one chase tick.
type EventKind int

const (
	// EventTick reports the running countdown once per tick.
	EventTick EventKind = iota
	// EventTouched fires when the spirit catches the player.
	EventTouched
	// EventVictory and EventDefeat fire once, on the terminal tick.
	EventVictory
	EventDefeat
)

// Event records one observable chase occurrence. SecondsLeft is set for
// EventTick.
type Event struct {
	Kind        EventKind
	SecondsLeft float64
}

// Chase owns one pursuit's clocks and terminal latch. It is not safe for
// concurrent use; the encounter engine serialises access.
//
// Touch damage deliberately bypasses the player's invulnerability window:
// the chase has no mercy interval beyond the retreat itself.
type Chase struct {
	tuning    ruleset.PursuitTuning
	player    *player.State
	remaining time.Duration
	retreat   time.Duration
	outcome   Outcome
}

// NewChase returns a chase with the full countdown armed.
//
// Precondition: tuning has passed ruleset validation; p must not be nil.
func NewChase(tuning ruleset.PursuitTuning, p *player.State) *Chase {
	if p == nil {
		panic("pursuit: player must not be nil")
	}
	return &Chase{tuning: tuning, player: p, remaining: tuning.Duration}
}

// Tick advances both clocks by dt with the spirit at distance meters and
// returns the events that occurred. After a terminal event the chase stops
// updating and Tick returns nil.
//
// Precondition: dt >= 0. The caller advances the player's own countdowns.
func (c *Chase) Tick(dt time.Duration, distance float64) []Event {
	if c.outcome != OutcomeUndecided {
		return nil
	}

	c.remaining -= dt
	if c.remaining < 0 {
		c.remaining = 0
	}
	if c.retreat > 0 {
		c.retreat -= dt
		if c.retreat < 0 {
			c.retreat = 0
		}
	}

	var events []Event
	if c.retreat == 0 && distance < c.tuning.CatchRadius {
		c.player.ForceDamage(c.tuning.TouchDamage)
		c.retreat = c.tuning.RetreatDuration
		events = append(events, Event{Kind: EventTouched})
	}

	// Terminals are one-shot; a dead player outranks an expired countdown.
	if !c.player.Alive() {
		c.outcome = OutcomeDefeat
		return append(events, Event{Kind: EventDefeat})
	}
	if c.remaining == 0 {
		c.outcome = OutcomeVictory
		return append(events, Event{Kind: EventVictory})
	}
	return append(events, Event{Kind: EventTick, SecondsLeft: c.remaining.Seconds()})
}

// Guidance returns the spirit's movement intent for the stage: its current
// speed on the linear ramp, and whether it is fleeing after a touch.
func (c *Chase) Guidance() (speed float64, retreating bool) {
	elapsed := 1 - float64(c.remaining)/float64(c.tuning.Duration)
	speed = c.tuning.BaseSpeed + (c.tuning.MaxSpeed-c.tuning.BaseSpeed)*elapsed
	return speed, c.retreat > 0
}

// Outcome returns the terminal result, or OutcomeUndecided while running.
func (c *Chase) Outcome() Outcome { return c.outcome }

// SecondsLeft returns the running countdown in seconds.
func (c *Chase) SecondsLeft() float64 { return c.remaining.Seconds() }

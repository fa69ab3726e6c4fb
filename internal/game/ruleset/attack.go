// Package ruleset defines the tunable combat rules for Revenant: boss attack
// patterns, difficulty phase pacing, and the per-session tuning aggregate that
// replaces ad-hoc difficulty globals. Definitions are plain values validated
// once at session start; YAML overrides layer on top of the built-in presets.
package ruleset

import (
	"fmt"
	"time"
)

// Attack defines one boss attack pattern.
//
// Invariant: immutable after validation; the simulation never mutates an
// Attack at runtime. Telegraph+Execute+Recovery is one full attack cycle.
type Attack struct {
	// ID uniquely identifies the attack within a Tuning.
	ID string
	// Name is the display name used in logs and presentation triggers.
	Name string
	// Telegraph is the wind-up interval before the attack becomes damaging.
	Telegraph time.Duration
	// Execute is the interval during which the attack threatens the player.
	Execute time.Duration
	// Recovery is the cool-down interval after the execute window.
	Recovery time.Duration
	// Radius is the maximum planar distance (meters) at which the executing
	// attack can damage the player.
	Radius float64
	// Damage is the flat HP removed on a successful hit.
	Damage int
	// MinPhase is the lowest difficulty phase at which this attack appears.
	MinPhase Phase
	// FrontalOnly restricts the threat to the boss's forward-facing arc.
	FrontalOnly bool
}

// Validate checks that the attack satisfies its invariants.
//
// Postcondition: returns nil iff ID and Name are non-empty, all three
// durations are > 0, Radius > 0, Damage > 0, and MinPhase is a valid phase.
func (a Attack) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("attack: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("attack %q: name must not be empty", a.ID)
	}
	if a.Telegraph <= 0 {
		return fmt.Errorf("attack %q: telegraph must be > 0, got %s", a.ID, a.Telegraph)
	}
	if a.Execute <= 0 {
		return fmt.Errorf("attack %q: execute must be > 0, got %s", a.ID, a.Execute)
	}
	if a.Recovery <= 0 {
		return fmt.Errorf("attack %q: recovery must be > 0, got %s", a.ID, a.Recovery)
	}
	if a.Radius <= 0 {
		return fmt.Errorf("attack %q: radius must be > 0, got %f", a.ID, a.Radius)
	}
	if a.Damage <= 0 {
		return fmt.Errorf("attack %q: damage must be > 0, got %d", a.ID, a.Damage)
	}
	if !a.MinPhase.Valid() {
		return fmt.Errorf("attack %q: min_phase must be in [%d, %d], got %d", a.ID, PhaseOne, PhaseThree, a.MinPhase)
	}
	return nil
}

// CycleDuration returns the total wall time of one full attack cycle.
//
// Postcondition: returns Telegraph + Execute + Recovery.
func (a Attack) CycleDuration() time.Duration {
	return a.Telegraph + a.Execute + a.Recovery
}

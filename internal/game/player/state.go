// Package player models the player's combat resources for one boss fight.
package player

import (
	"time"

	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// State tracks the player's health, attack cooldown, invulnerability window,
// and rapid-attack buff. It is not safe for concurrent use; the encounter
// engine serialises access.
type State struct {
	tuning ruleset.PlayerTuning

	hp         int
	lastAttack time.Time
	invulnLeft time.Duration
	rapidLeft  time.Duration
}

// NewState returns a player at full health with no cooldowns running.
//
// Precondition: tuning has passed ruleset validation.
func NewState(tuning ruleset.PlayerTuning) *State {
	return &State{tuning: tuning, hp: tuning.MaxHP}
}

// CanAttack reports whether a swing at now satisfies the attack cooldown.
// The first swing of a fight is always allowed.
func (s *State) CanAttack(now time.Time) bool {
	if s.lastAttack.IsZero() {
		return true
	}
	return now.Sub(s.lastAttack) >= s.Cooldown()
}

// RecordAttack marks now as the start of the attack cooldown.
//
// Postcondition: CanAttack(now) is false until one Cooldown() has elapsed.
func (s *State) RecordAttack(now time.Time) {
	s.lastAttack = now
}

// TakeDamage applies boss attack damage and reports whether it landed.
// Damage is ignored while the invulnerability window is running. A landed
// hit clamps HP at zero and starts a fresh invulnerability window. Death is
// never signalled here; callers observe Alive.
//
// Postcondition: HP() is in [0, MaxHP()].
func (s *State) TakeDamage(amount int) bool {
	if s.invulnLeft > 0 {
		return false
	}
	s.hp -= amount
	if s.hp < 0 {
		s.hp = 0
	}
	s.invulnLeft = s.tuning.InvulnWindow
	return true
}

// ForceDamage applies damage that ignores the invulnerability window and
// does not start one. The pursuit spirit's touch uses this path.
//
// Postcondition: HP() is in [0, MaxHP()].
func (s *State) ForceDamage(amount int) {
	s.hp -= amount
	if s.hp < 0 {
		s.hp = 0
	}
}

// Heal restores HP, clamped at MaxHP.
func (s *State) Heal(amount int) {
	s.hp += amount
	if s.hp > s.tuning.MaxHP {
		s.hp = s.tuning.MaxHP
	}
}

// ActivateRapid arms the rapid-attack buff for its full tuned duration.
// Re-activation while active re-arms to the full duration; the remaining
// time never exceeds the tuned duration.
func (s *State) ActivateRapid() {
	s.rapidLeft = s.tuning.RapidDuration
}

// Update advances the invulnerability and rapid countdowns by dt, flooring
// at zero. It reports whether the rapid buff expired during this update.
//
// Precondition: dt >= 0.
func (s *State) Update(dt time.Duration) (rapidExpired bool) {
	if s.invulnLeft > 0 {
		s.invulnLeft -= dt
		if s.invulnLeft < 0 {
			s.invulnLeft = 0
		}
	}
	if s.rapidLeft > 0 {
		s.rapidLeft -= dt
		if s.rapidLeft <= 0 {
			s.rapidLeft = 0
			rapidExpired = true
		}
	}
	return rapidExpired
}

// Reset restores full health and clears every countdown and the attack
// cooldown, as if the fight had not started.
func (s *State) Reset() {
	s.hp = s.tuning.MaxHP
	s.lastAttack = time.Time{}
	s.invulnLeft = 0
	s.rapidLeft = 0
}

// HP returns current health.
func (s *State) HP() int { return s.hp }

// MaxHP returns full health.
func (s *State) MaxHP() int { return s.tuning.MaxHP }

// Alive reports whether the player has health remaining.
func (s *State) Alive() bool { return s.hp > 0 }

// Invulnerable reports whether the post-hit damage immunity is running.
func (s *State) Invulnerable() bool { return s.invulnLeft > 0 }

// RapidActive reports whether the rapid-attack buff is running.
func (s *State) RapidActive() bool { return s.rapidLeft > 0 }

// AttackDamage returns the damage of one swing, boosted while the rapid
// buff is active.
func (s *State) AttackDamage() int {
	if s.RapidActive() {
		return s.tuning.RapidDamage
	}
	return s.tuning.AttackDamage
}

// AttackRange returns the maximum distance at which a swing can land.
func (s *State) AttackRange() float64 { return s.tuning.AttackRange }

// Cooldown returns the interval between swings, shortened while the rapid
// buff is active.
func (s *State) Cooldown() time.Duration {
	if s.RapidActive() {
		return s.tuning.RapidCooldown
	}
	return s.tuning.AttackCooldown
}

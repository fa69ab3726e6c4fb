package ruleset

import (
	"fmt"
	"time"
)

// PlayerTuning holds the player resource constants for one session.
type PlayerTuning struct {
	// MaxHP is the player's full health.
	MaxHP int
	// AttackDamage is the HP removed from the boss per landed swing.
	AttackDamage int
	// AttackCooldown is the minimum interval between swings.
	AttackCooldown time.Duration
	// AttackRange is the maximum planar distance (meters) at which a swing
	// can land.
	AttackRange float64
	// InvulnWindow is the post-damage interval during which further boss
	// attack damage is ignored.
	InvulnWindow time.Duration
	// HealAmount is the HP restored by healing loot.
	HealAmount int
	// RapidDamage, RapidCooldown, and RapidDuration parameterize the
	// time-limited rapid-attack buff granted by buff loot.
	RapidDamage   int
	RapidCooldown time.Duration
	RapidDuration time.Duration
}

// Validate checks that the player tuning satisfies its invariants.
//
// Postcondition: returns nil iff all HP/damage values are > 0, all durations
// are > 0, AttackRange > 0, and the rapid cooldown is not slower than the
// base cooldown.
func (t PlayerTuning) Validate() error {
	if t.MaxHP <= 0 {
		return fmt.Errorf("player: max_hp must be > 0, got %d", t.MaxHP)
	}
	if t.AttackDamage <= 0 {
		return fmt.Errorf("player: attack_damage must be > 0, got %d", t.AttackDamage)
	}
	if t.AttackCooldown <= 0 {
		return fmt.Errorf("player: attack_cooldown must be > 0, got %s", t.AttackCooldown)
	}
	if t.AttackRange <= 0 {
		return fmt.Errorf("player: attack_range must be > 0, got %f", t.AttackRange)
	}
	if t.InvulnWindow <= 0 {
		return fmt.Errorf("player: invuln_window must be > 0, got %s", t.InvulnWindow)
	}
	if t.HealAmount <= 0 {
		return fmt.Errorf("player: heal_amount must be > 0, got %d", t.HealAmount)
	}
	if t.RapidDamage <= 0 {
		return fmt.Errorf("player: rapid_damage must be > 0, got %d", t.RapidDamage)
	}
	if t.RapidCooldown <= 0 {
		return fmt.Errorf("player: rapid_cooldown must be > 0, got %s", t.RapidCooldown)
	}
	if t.RapidCooldown > t.AttackCooldown {
		return fmt.Errorf("player: rapid_cooldown (%s) must not exceed attack_cooldown (%s)", t.RapidCooldown, t.AttackCooldown)
	}
	if t.RapidDuration <= 0 {
		return fmt.Errorf("player: rapid_duration must be > 0, got %s", t.RapidDuration)
	}
	return nil
}

// BossTuning holds the boss constants independent of phase pacing.
type BossTuning struct {
	// MaxHP is the boss's full health.
	MaxHP int
	// TauntRange is the distance (meters) beyond which an expiring idle
	// countdown produces a taunt instead of an attack.
	TauntRange float64
	// TauntDuration is the fixed length of the taunting state.
	TauntDuration time.Duration
	// DyingDuration is the fixed grace interval between the death event and
	// the dead state, reserved for the death presentation.
	DyingDuration time.Duration
	// FallbackAttack is the attack ID used when the repeat-avoidance rule
	// leaves selection without a candidate.
	FallbackAttack string
}

// Validate checks that the boss tuning satisfies its invariants.
//
// Postcondition: returns nil iff MaxHP > 0, TauntRange > 0, both durations
// are > 0, and FallbackAttack is non-empty. Cross-checks against the attack
// list happen in Tuning.Validate.
func (t BossTuning) Validate() error {
	if t.MaxHP <= 0 {
		return fmt.Errorf("boss: max_hp must be > 0, got %d", t.MaxHP)
	}
	if t.TauntRange <= 0 {
		return fmt.Errorf("boss: taunt_range must be > 0, got %f", t.TauntRange)
	}
	if t.TauntDuration <= 0 {
		return fmt.Errorf("boss: taunt_duration must be > 0, got %s", t.TauntDuration)
	}
	if t.DyingDuration <= 0 {
		return fmt.Errorf("boss: dying_duration must be > 0, got %s", t.DyingDuration)
	}
	if t.FallbackAttack == "" {
		return fmt.Errorf("boss: fallback_attack must not be empty")
	}
	return nil
}

// LootTuning holds the loot spawn scheduling constants.
type LootTuning struct {
	// IntervalMin and IntervalMax bound the randomized delay between loot
	// spawn decisions.
	IntervalMin time.Duration
	IntervalMax time.Duration
	// PickupRange is the planar distance (meters) within which loot can be
	// collected.
	PickupRange float64
	// TTL is how long spawned loot exists before the presentation layer
	// despawns it.
	TTL time.Duration
}

// Validate checks that the loot tuning satisfies its invariants.
//
// Postcondition: returns nil iff 0 < IntervalMin <= IntervalMax,
// PickupRange > 0, and TTL > 0.
func (t LootTuning) Validate() error {
	if t.IntervalMin <= 0 {
		return fmt.Errorf("loot: interval_min must be > 0, got %s", t.IntervalMin)
	}
	if t.IntervalMax < t.IntervalMin {
		return fmt.Errorf("loot: interval_min (%s) must be <= interval_max (%s)", t.IntervalMin, t.IntervalMax)
	}
	if t.PickupRange <= 0 {
		return fmt.Errorf("loot: pickup_range must be > 0, got %f", t.PickupRange)
	}
	if t.TTL <= 0 {
		return fmt.Errorf("loot: ttl must be > 0, got %s", t.TTL)
	}
	return nil
}

// PursuitTuning holds the spirit-chase constants.
type PursuitTuning struct {
	// Duration is the total chase countdown; surviving it is victory.
	Duration time.Duration
	// CatchRadius is the distance (meters) below which the spirit touches
	// the player.
	CatchRadius float64
	// TouchDamage is the flat HP removed by a touch. Touch damage bypasses
	// the invulnerability window; the chase has no immunity.
	TouchDamage int
	// RetreatDuration is the interval after a touch during which the spirit
	// is driven away from the player.
	RetreatDuration time.Duration
	// BaseSpeed and MaxSpeed (m/s) bound the spirit's linear speed ramp over
	// the chase's elapsed fraction.
	BaseSpeed float64
	MaxSpeed  float64
}

// Validate checks that the pursuit tuning satisfies its invariants.
//
// Postcondition: returns nil iff Duration > 0, CatchRadius > 0,
// TouchDamage > 0, RetreatDuration > 0, and 0 < BaseSpeed <= MaxSpeed.
func (t PursuitTuning) Validate() error {
	if t.Duration <= 0 {
		return fmt.Errorf("pursuit: duration must be > 0, got %s", t.Duration)
	}
	if t.CatchRadius <= 0 {
		return fmt.Errorf("pursuit: catch_radius must be > 0, got %f", t.CatchRadius)
	}
	if t.TouchDamage <= 0 {
		return fmt.Errorf("pursuit: touch_damage must be > 0, got %d", t.TouchDamage)
	}
	if t.RetreatDuration <= 0 {
		return fmt.Errorf("pursuit: retreat_duration must be > 0, got %s", t.RetreatDuration)
	}
	if t.BaseSpeed <= 0 {
		return fmt.Errorf("pursuit: base_speed must be > 0, got %f", t.BaseSpeed)
	}
	if t.MaxSpeed < t.BaseSpeed {
		return fmt.Errorf("pursuit: base_speed (%f) must be <= max_speed (%f)", t.BaseSpeed, t.MaxSpeed)
	}
	return nil
}

// Tuning aggregates every tunable constant for one fight session. A Tuning is
// constructed once (preset or preset+overrides), validated, and passed into
// the simulation constructors; nothing reads tuning from global state.
type Tuning struct {
	Attacks []Attack
	Phases  []PhaseDef
	Player  PlayerTuning
	Boss    BossTuning
	Loot    LootTuning
	Pursuit PursuitTuning
}

// Validate checks every section and the cross-section invariants.
//
// Postcondition: returns nil iff all sections validate, attack IDs are
// unique, at least one attack is available in PhaseOne, and the boss
// fallback attack exists with MinPhase == PhaseOne.
func (t Tuning) Validate() error {
	if len(t.Attacks) == 0 {
		return fmt.Errorf("tuning: at least one attack is required")
	}
	seen := make(map[string]struct{}, len(t.Attacks))
	phaseOneAttacks := 0
	for _, a := range t.Attacks {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("tuning: %w", err)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("tuning: duplicate attack id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.MinPhase == PhaseOne {
			phaseOneAttacks++
		}
	}
	if phaseOneAttacks == 0 {
		return fmt.Errorf("tuning: at least one attack must be available in %s", PhaseOne)
	}
	if err := validatePhaseTable(t.Phases); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := t.Player.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := t.Boss.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	fallback, ok := t.AttackByID(t.Boss.FallbackAttack)
	if !ok {
		return fmt.Errorf("tuning: boss fallback_attack %q is not a defined attack", t.Boss.FallbackAttack)
	}
	if fallback.MinPhase != PhaseOne {
		return fmt.Errorf("tuning: boss fallback_attack %q must be available in %s", fallback.ID, PhaseOne)
	}
	if err := t.Loot.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := t.Pursuit.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// AttackByID returns the attack with the given ID.
//
// Postcondition: returns (attack, true) if found, or (Attack{}, false).
func (t Tuning) AttackByID(id string) (Attack, bool) {
	for _, a := range t.Attacks {
		if a.ID == id {
			return a, true
		}
	}
	return Attack{}, false
}

// AttacksForPhase returns every attack whose MinPhase is satisfied by p, in
// declaration order.
//
// Postcondition: for a validated Tuning and any valid p, the result is
// non-empty.
func (t Tuning) AttacksForPhase(p Phase) []Attack {
	var out []Attack
	for _, a := range t.Attacks {
		if a.MinPhase <= p {
			out = append(out, a)
		}
	}
	return out
}

// PhaseDefFor returns the pacing definition for phase p.
//
// Precondition: t has passed Validate; p must be a valid phase.
func (t Tuning) PhaseDefFor(p Phase) PhaseDef {
	if !p.Valid() || int(p) > len(t.Phases) {
		panic(fmt.Sprintf("ruleset: PhaseDefFor called with invalid phase %d", p))
	}
	return t.Phases[p-1]
}

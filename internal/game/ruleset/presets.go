package ruleset

import (
	"fmt"
	"time"
)

// Default returns the standard fight tuning. Every call returns a fresh
// value; callers may mutate the result without affecting later calls.
//
// Postcondition: Default().Validate() == nil.
func Default() Tuning {
	return Tuning{
		Attacks: []Attack{
			{
				ID:          "swipe",
				Name:        "Claw Swipe",
				Telegraph:   1200 * time.Millisecond,
				Execute:     600 * time.Millisecond,
				Recovery:    1500 * time.Millisecond,
				Radius:      1.2,
				Damage:      10,
				MinPhase:    PhaseOne,
				FrontalOnly: true,
			},
			{
				ID:        "slam",
				Name:      "Ground Slam",
				Telegraph: 1600 * time.Millisecond,
				Execute:   800 * time.Millisecond,
				Recovery:  2 * time.Second,
				Radius:    2.0,
				Damage:    15,
				MinPhase:  PhaseOne,
			},
			{
				ID:          "lunge",
				Name:        "Lunge",
				Telegraph:   900 * time.Millisecond,
				Execute:     500 * time.Millisecond,
				Recovery:    1800 * time.Millisecond,
				Radius:      1.6,
				Damage:      12,
				MinPhase:    PhaseTwo,
				FrontalOnly: true,
			},
			{
				ID:        "wail",
				Name:      "Spectral Wail",
				Telegraph: 2 * time.Second,
				Execute:   1 * time.Second,
				Recovery:  2200 * time.Millisecond,
				Radius:    2.5,
				Damage:    18,
				MinPhase:  PhaseThree,
			},
		},
		Phases: []PhaseDef{
			{Phase: PhaseOne, IdleMin: 2500 * time.Millisecond, IdleMax: 4 * time.Second, Speed: 0.6, EngageRange: 1.5},
			{Phase: PhaseTwo, IdleMin: 1800 * time.Millisecond, IdleMax: 3 * time.Second, Speed: 0.9, EngageRange: 1.2},
			{Phase: PhaseThree, IdleMin: 1200 * time.Millisecond, IdleMax: 2200 * time.Millisecond, Speed: 1.3, EngageRange: 1.0},
		},
		Player: PlayerTuning{
			MaxHP:          100,
			AttackDamage:   8,
			AttackCooldown: 800 * time.Millisecond,
			AttackRange:    2.0,
			InvulnWindow:   1 * time.Second,
			HealAmount:     25,
			RapidDamage:    14,
			RapidCooldown:  350 * time.Millisecond,
			RapidDuration:  6 * time.Second,
		},
		Boss: BossTuning{
			MaxHP:          150,
			TauntRange:     3.5,
			TauntDuration:  2 * time.Second,
			DyingDuration:  2500 * time.Millisecond,
			FallbackAttack: "swipe",
		},
		Loot: LootTuning{
			IntervalMin: 8 * time.Second,
			IntervalMax: 14 * time.Second,
			PickupRange: 1.0,
			TTL:         10 * time.Second,
		},
		Pursuit: PursuitTuning{
			Duration:        20 * time.Second,
			CatchRadius:     0.8,
			TouchDamage:     20,
			RetreatDuration: 2 * time.Second,
			BaseSpeed:       0.8,
			MaxSpeed:        2.2,
		},
	}
}

// Relaxed returns a gentler tuning derived from Default: more player health
// and forgiveness, a softer boss, a shorter and weaker chase, and slower
// pacing. Phase ordering invariants are preserved.
//
// Postcondition: Relaxed().Validate() == nil.
func Relaxed() Tuning {
	t := Default()
	t.Player.MaxHP = 120
	t.Player.InvulnWindow = 1500 * time.Millisecond
	t.Boss.MaxHP = 120
	t.Pursuit.TouchDamage = 12
	t.Pursuit.Duration = 16 * time.Second
	for i := range t.Phases {
		t.Phases[i].IdleMin = t.Phases[i].IdleMin * 5 / 4
		t.Phases[i].IdleMax = t.Phases[i].IdleMax * 5 / 4
		t.Phases[i].Speed *= 0.9
	}
	return t
}

// PresetByName returns the built-in tuning with the given name, one of
// "default" or "relaxed".
func PresetByName(name string) (Tuning, error) {
	switch name {
	case "default":
		return Default(), nil
	case "relaxed":
		return Relaxed(), nil
	default:
		return Tuning{}, fmt.Errorf("unknown tuning preset %q", name)
	}
}

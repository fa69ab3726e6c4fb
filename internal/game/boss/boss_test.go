package boss_test

import (
	"testing"
	"time"

	"github.com/kestrelforge/revenant/internal/game/boss"
	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const closeDistance = 1.0 // inside the default taunt range
const farDistance = 10.0  // outside the default taunt range

// fixedIdleTuning pins every idle draw to an exact value so transitions can
// be stepped deterministically without seeding.
func fixedIdleTuning() ruleset.Tuning {
	t := ruleset.Default()
	t.Phases = []ruleset.PhaseDef{
		{Phase: ruleset.PhaseOne, IdleMin: 2 * time.Second, IdleMax: 2 * time.Second, Speed: 0.6, EngageRange: 1.5},
		{Phase: ruleset.PhaseTwo, IdleMin: 1500 * time.Millisecond, IdleMax: 1500 * time.Millisecond, Speed: 0.9, EngageRange: 1.2},
		{Phase: ruleset.PhaseThree, IdleMin: time.Second, IdleMax: time.Second, Speed: 1.3, EngageRange: 1.0},
	}
	return t
}

// singleAttackTuning additionally trims the catalog to one attack so
// selection is deterministic too.
func singleAttackTuning() ruleset.Tuning {
	t := fixedIdleTuning()
	t.Attacks = t.Attacks[:1] // swipe
	return t
}

func kinds(events []boss.Event) []boss.EventKind {
	out := make([]boss.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestNew_StartsUnarmedAtFullHP(t *testing.T) {
	b := boss.New(fixedIdleTuning(), rng.NewCryptoSource())
	assert.Equal(t, b.MaxHP(), b.HP())
	assert.Equal(t, ruleset.PhaseOne, b.Phase())
	assert.Equal(t, boss.StateIdle, b.StateID())
	_, ok := b.CurrentAttack()
	assert.False(t, ok)

	// The AI clock has not started: time passes without effect.
	events := b.Update(time.Minute, closeDistance)
	assert.Empty(t, events)
	assert.Equal(t, boss.StateIdle, b.StateID())
}

func TestNew_PanicsOnNilSource(t *testing.T) {
	assert.Panics(t, func() { boss.New(ruleset.Default(), nil) })
}

func TestBoss_Update_WalksAttackCycle(t *testing.T) {
	b := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	b.BeginFight()

	events := b.Update(2*time.Second, closeDistance)
	require.Equal(t, []boss.EventKind{boss.EventAttackTelegraphed}, kinds(events))
	assert.Equal(t, boss.StateTelegraphing, b.StateID())
	attack, ok := b.CurrentAttack()
	require.True(t, ok)
	assert.Equal(t, "swipe", attack.ID)

	events = b.Update(attack.Telegraph, closeDistance)
	require.Equal(t, []boss.EventKind{boss.EventAttackExecuted}, kinds(events))
	assert.Equal(t, boss.StateExecuting, b.StateID())

	events = b.Update(attack.Execute, closeDistance)
	assert.Empty(t, events)
	assert.Equal(t, boss.StateRecovering, b.StateID())
	_, ok = b.CurrentAttack()
	assert.True(t, ok, "the attack is still in flight during recovery")

	events = b.Update(attack.Recovery, closeDistance)
	require.Equal(t, []boss.EventKind{boss.EventAttackRecovered}, kinds(events))
	assert.Equal(t, boss.StateIdle, b.StateID())
	_, ok = b.CurrentAttack()
	assert.False(t, ok)
}

func TestBoss_Update_TauntsWhenPlayerFar(t *testing.T) {
	tuning := singleAttackTuning()
	b := boss.New(tuning, rng.NewCryptoSource())
	b.BeginFight()

	events := b.Update(2*time.Second, farDistance)
	require.Equal(t, []boss.EventKind{boss.EventTaunted}, kinds(events))
	assert.Equal(t, boss.StateTaunting, b.StateID())
	_, ok := b.CurrentAttack()
	assert.False(t, ok)

	// Taunt runs its fixed duration, then a fresh idle countdown.
	events = b.Update(tuning.Boss.TauntDuration, farDistance)
	assert.Empty(t, events)
	assert.Equal(t, boss.StateIdle, b.StateID())

	// With the player now close, the next expiry attacks instead.
	events = b.Update(2*time.Second, closeDistance)
	require.Equal(t, []boss.EventKind{boss.EventAttackTelegraphed}, kinds(events))
}

// A tick that crosses several boundaries carries its remainder forward, so
// one big tick and many small ticks produce the same cycle.
func TestBoss_Update_CycleIsTickSizeIndependent(t *testing.T) {
	big := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	big.BeginFight()
	small := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	small.BeginFight()

	total := 2*time.Second + 3300*time.Millisecond // idle + full swipe cycle

	bigEvents := big.Update(total, closeDistance)

	var smallEvents []boss.Event
	for elapsed := time.Duration(0); elapsed < total; elapsed += 10 * time.Millisecond {
		smallEvents = append(smallEvents, small.Update(10*time.Millisecond, closeDistance)...)
	}

	assert.Equal(t, kinds(bigEvents), kinds(smallEvents))
	assert.Equal(t, boss.StateIdle, big.StateID())
	assert.Equal(t, boss.StateIdle, small.StateID())
}

// Same seed and same total simulated time give identical event streams
// regardless of how the time is sliced.
func TestBoss_Update_SeededStreamsMatchAcrossTickSizes(t *testing.T) {
	a := boss.New(ruleset.Default(), rng.NewSeededSource(42))
	a.BeginFight()
	b := boss.New(ruleset.Default(), rng.NewSeededSource(42))
	b.BeginFight()

	var aEvents, bEvents []boss.Event
	for i := 0; i < 300; i++ {
		aEvents = append(aEvents, a.Update(99*time.Millisecond, closeDistance)...)
	}
	for i := 0; i < 990; i++ {
		bEvents = append(bEvents, b.Update(30*time.Millisecond, closeDistance)...)
	}

	require.NotEmpty(t, aEvents)
	assert.Equal(t, aEvents, bEvents)
	assert.Equal(t, a.StateID(), b.StateID())
}

// With two attacks unlocked, the boss never telegraphs the same attack twice
// in a row.
func TestBoss_SelectAttack_NeverRepeatsImmediately(t *testing.T) {
	b := boss.New(fixedIdleTuning(), rng.NewCryptoSource())
	b.BeginFight()

	var telegraphed []string
	for i := 0; i < 4000 && len(telegraphed) < 40; i++ {
		for _, e := range b.Update(100*time.Millisecond, closeDistance) {
			if e.Kind == boss.EventAttackTelegraphed {
				telegraphed = append(telegraphed, e.Attack.ID)
			}
		}
	}

	require.GreaterOrEqual(t, len(telegraphed), 10)
	for i := 1; i < len(telegraphed); i++ {
		assert.NotEqual(t, telegraphed[i-1], telegraphed[i],
			"attack repeated immediately at index %d", i)
	}
}

// With a single unlocked attack the fallback keeps the AI attacking even
// though the repeat rule excludes every candidate.
func TestBoss_SelectAttack_FallsBackWhenAllExcluded(t *testing.T) {
	b := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	b.BeginFight()

	var telegraphed []string
	for i := 0; i < 2000 && len(telegraphed) < 3; i++ {
		for _, e := range b.Update(100*time.Millisecond, closeDistance) {
			if e.Kind == boss.EventAttackTelegraphed {
				telegraphed = append(telegraphed, e.Attack.ID)
			}
		}
	}

	require.GreaterOrEqual(t, len(telegraphed), 3)
	for _, id := range telegraphed {
		assert.Equal(t, "swipe", id)
	}
}

// Dropping to 55% enters phase 2 with exactly one event; a further hit in
// the same band fires nothing.
func TestBoss_TakeDamage_AnnouncesPhaseOnce(t *testing.T) {
	b := boss.New(ruleset.Default(), rng.NewCryptoSource()) // 150 max HP

	events := b.TakeDamage(67) // 83 HP ~ 55%
	require.Len(t, events, 1)
	assert.Equal(t, boss.EventPhaseEntered, events[0].Kind)
	assert.Equal(t, ruleset.PhaseTwo, events[0].Phase)
	assert.Equal(t, ruleset.PhaseTwo, b.Phase())

	events = b.TakeDamage(8) // 75 HP = 50%, still phase 2
	assert.Empty(t, events)
	assert.Equal(t, ruleset.PhaseTwo, b.Phase())
}

func TestBoss_TakeDamage_FirstBandHitFiresNothing(t *testing.T) {
	b := boss.New(ruleset.Default(), rng.NewCryptoSource())
	events := b.TakeDamage(10) // 140 HP, still phase 1
	assert.Empty(t, events)
	assert.Equal(t, ruleset.PhaseOne, b.Phase())
}

func TestBoss_TakeDamage_DeathForcesDying(t *testing.T) {
	tuning := fixedIdleTuning()
	b := boss.New(tuning, rng.NewCryptoSource())
	b.BeginFight()

	events := b.TakeDamage(b.MaxHP())
	require.Equal(t, []boss.EventKind{boss.EventDied}, kinds(events))
	assert.Equal(t, boss.StateDying, b.StateID())
	assert.Equal(t, 0, b.HP())

	// The killing blow suppresses the phase-3 announcement.
	for _, e := range events {
		assert.NotEqual(t, boss.EventPhaseEntered, e.Kind)
	}

	// Damage after death is ignored.
	assert.Empty(t, b.TakeDamage(50))
	assert.Equal(t, 0, b.HP())

	// The dying grace runs out into the terminal dead state.
	assert.Empty(t, b.Update(tuning.Boss.DyingDuration, closeDistance))
	assert.Equal(t, boss.StateDead, b.StateID())
	assert.Empty(t, b.Update(time.Minute, closeDistance))
	assert.Equal(t, boss.StateDead, b.StateID())
}

func TestBoss_TakeDamage_MidCycleDeathDropsAttack(t *testing.T) {
	b := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	b.BeginFight()
	b.Update(2*time.Second, closeDistance)
	require.Equal(t, boss.StateTelegraphing, b.StateID())

	b.TakeDamage(b.MaxHP())
	assert.Equal(t, boss.StateDying, b.StateID())
	_, ok := b.CurrentAttack()
	assert.False(t, ok)
}

func TestBoss_SpeedAndEngageRange_FollowPhase(t *testing.T) {
	tuning := ruleset.Default()
	b := boss.New(tuning, rng.NewCryptoSource())
	assert.Equal(t, tuning.Phases[0].Speed, b.Speed())
	assert.Equal(t, tuning.Phases[0].EngageRange, b.EngageRange())

	b.TakeDamage(67) // phase 2
	assert.Equal(t, tuning.Phases[1].Speed, b.Speed())
	assert.Equal(t, tuning.Phases[1].EngageRange, b.EngageRange())
}

// Reset mid-fight restores the documented initial values no matter the
// prior state.
func TestBoss_Reset_RestoresInitialValues(t *testing.T) {
	b := boss.New(singleAttackTuning(), rng.NewCryptoSource())
	b.BeginFight()
	b.Update(2*time.Second, closeDistance)
	b.TakeDamage(100)

	b.Reset()
	assert.Equal(t, b.MaxHP(), b.HP())
	assert.Equal(t, ruleset.PhaseOne, b.Phase())
	assert.Equal(t, boss.StateIdle, b.StateID())
	_, ok := b.CurrentAttack()
	assert.False(t, ok)

	// Unarmed again until BeginFight.
	assert.Empty(t, b.Update(time.Minute, closeDistance))
	assert.Equal(t, boss.StateIdle, b.StateID())

	// Phase announcements are cleared: phase 2 announces once more.
	events := b.TakeDamage(67)
	require.Len(t, events, 1)
	assert.Equal(t, boss.EventPhaseEntered, events[0].Kind)
}

// Property: over any decreasing HP sequence the phase never goes backward
// and each phase announces at most once.
func TestBoss_TakeDamage_PhaseMonotonicAndAnnouncedOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := boss.New(ruleset.Default(), rng.NewSeededSource(7))
		seen := make(map[ruleset.Phase]int)
		prev := b.Phase()
		for b.HP() > 0 {
			amount := rapid.IntRange(1, 25).Draw(rt, "amount")
			events := b.TakeDamage(amount)
			for _, e := range events {
				if e.Kind == boss.EventPhaseEntered {
					seen[e.Phase]++
				}
			}
			if b.HP() == 0 {
				break
			}
			cur := b.Phase()
			if cur < prev {
				rt.Fatalf("phase went backward: %s -> %s", prev, cur)
			}
			prev = cur
		}
		for phase, n := range seen {
			if n > 1 {
				rt.Fatalf("%s announced %d times", phase, n)
			}
		}
	})
}

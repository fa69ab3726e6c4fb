package pursuit_test

import (
	"testing"
	"time"

	"github.com/kestrelforge/revenant/internal/game/player"
	"github.com/kestrelforge/revenant/internal/game/pursuit"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const caughtDistance = 0.5 // inside the default catch radius
const safeDistance = 5.0

func newChase() (*pursuit.Chase, *player.State) {
	tuning := ruleset.Default()
	p := player.NewState(tuning.Player)
	return pursuit.NewChase(tuning.Pursuit, p), p
}

func kinds(events []pursuit.Event) []pursuit.EventKind {
	out := make([]pursuit.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestNewChase_PanicsOnNilPlayer(t *testing.T) {
	assert.Panics(t, func() { pursuit.NewChase(ruleset.Default().Pursuit, nil) })
}

func TestChase_Tick_ReportsDecreasingCountdown(t *testing.T) {
	c, _ := newChase()
	events := c.Tick(3*time.Second, safeDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTick}, kinds(events))
	assert.InDelta(t, 17.0, events[0].SecondsLeft, 1e-9)

	events = c.Tick(2*time.Second, safeDistance)
	assert.InDelta(t, 15.0, events[0].SecondsLeft, 1e-9)
	assert.Equal(t, pursuit.OutcomeUndecided, c.Outcome())
}

// Catch at t=3s: touch damage lands, the retreat window opens, no second
// touch can land inside it, and surviving to the countdown is victory.
func TestChase_Tick_CatchRetreatThenVictory(t *testing.T) {
	c, p := newChase()

	c.Tick(3*time.Second, safeDistance)
	events := c.Tick(10*time.Millisecond, caughtDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTouched, pursuit.EventTick}, kinds(events))
	assert.Equal(t, 80, p.HP())

	_, retreating := c.Guidance()
	assert.True(t, retreating, "spirit flees after a touch")

	// Still point-blank, but the retreat window absorbs the contact.
	events = c.Tick(time.Second, caughtDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTick}, kinds(events))
	assert.Equal(t, 80, p.HP())

	// Retreat expires; the spirit resumes closing.
	c.Tick(time.Second, safeDistance)
	_, retreating = c.Guidance()
	assert.False(t, retreating)

	// Run the countdown out with the player alive.
	events = c.Tick(time.Minute, safeDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventVictory}, kinds(events))
	assert.Equal(t, pursuit.OutcomeVictory, c.Outcome())
}

func TestChase_Tick_TouchBypassesInvulnWindow(t *testing.T) {
	c, p := newChase()
	require.True(t, p.TakeDamage(10))
	require.True(t, p.Invulnerable())

	events := c.Tick(10*time.Millisecond, caughtDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTouched, pursuit.EventTick}, kinds(events))
	assert.Equal(t, 70, p.HP(), "touch damage ignores the invulnerability window")
}

func TestChase_Tick_RetreatAllowsLaterTouch(t *testing.T) {
	tuning := ruleset.Default()
	c, p := newChase()

	c.Tick(10*time.Millisecond, caughtDistance)
	require.Equal(t, 80, p.HP())

	// Wait out the full retreat window at a safe distance.
	c.Tick(tuning.Pursuit.RetreatDuration, safeDistance)

	events := c.Tick(10*time.Millisecond, caughtDistance)
	require.Contains(t, kinds(events), pursuit.EventTouched)
	assert.Equal(t, 60, p.HP())
}

func TestChase_Tick_DefeatWhenTouchKills(t *testing.T) {
	c, p := newChase()
	p.ForceDamage(p.MaxHP() - 10) // 10 HP left; the next touch kills

	events := c.Tick(10*time.Millisecond, caughtDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTouched, pursuit.EventDefeat}, kinds(events))
	assert.Equal(t, pursuit.OutcomeDefeat, c.Outcome())
	assert.False(t, p.Alive())
}

// When the killing touch lands on the same tick the countdown expires,
// defeat wins.
func TestChase_Tick_DefeatOutranksExpiry(t *testing.T) {
	c, p := newChase()
	p.ForceDamage(p.MaxHP() - 10)

	events := c.Tick(time.Minute, caughtDistance)
	require.Equal(t, []pursuit.EventKind{pursuit.EventTouched, pursuit.EventDefeat}, kinds(events))
	assert.Equal(t, pursuit.OutcomeDefeat, c.Outcome())
}

func TestChase_Tick_StopsAfterTerminal(t *testing.T) {
	c, _ := newChase()
	c.Tick(time.Minute, safeDistance)
	require.Equal(t, pursuit.OutcomeVictory, c.Outcome())

	assert.Nil(t, c.Tick(time.Second, caughtDistance))
	assert.Equal(t, pursuit.OutcomeVictory, c.Outcome())
}

func TestChase_Guidance_SpeedRampsLinearly(t *testing.T) {
	tuning := ruleset.Default()
	c, _ := newChase()

	speed, _ := c.Guidance()
	assert.InDelta(t, tuning.Pursuit.BaseSpeed, speed, 1e-9)

	c.Tick(tuning.Pursuit.Duration/2, safeDistance)
	speed, _ = c.Guidance()
	mid := tuning.Pursuit.BaseSpeed + (tuning.Pursuit.MaxSpeed-tuning.Pursuit.BaseSpeed)/2
	assert.InDelta(t, mid, speed, 1e-9)
}

// Property: for any tick slicing, the countdown never increases, the speed
// stays on the tuned ramp, and at most one terminal event ever fires.
func TestChase_Tick_InvariantsUnderAnySlicing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tuning := ruleset.Default()
		p := player.NewState(tuning.Player)
		c := pursuit.NewChase(tuning.Pursuit, p)

		terminals := 0
		prevLeft := c.SecondsLeft()
		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			dt := time.Duration(rapid.Int64Range(0, 500).Draw(rt, "dtMS")) * time.Millisecond
			distance := rapid.Float64Range(0, 6).Draw(rt, "distance")
			for _, e := range c.Tick(dt, distance) {
				if e.Kind == pursuit.EventVictory || e.Kind == pursuit.EventDefeat {
					terminals++
				}
			}
			if c.SecondsLeft() > prevLeft {
				rt.Fatalf("countdown increased: %f -> %f", prevLeft, c.SecondsLeft())
			}
			prevLeft = c.SecondsLeft()

			speed, _ := c.Guidance()
			if speed < tuning.Pursuit.BaseSpeed-1e-9 || speed > tuning.Pursuit.MaxSpeed+1e-9 {
				rt.Fatalf("speed %f off the ramp [%f, %f]", speed, tuning.Pursuit.BaseSpeed, tuning.Pursuit.MaxSpeed)
			}
		}
		if terminals > 1 {
			rt.Fatalf("terminal fired %d times", terminals)
		}
	})
}

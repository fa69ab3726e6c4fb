package ruleset_test

import (
	"testing"
	"time"

	"github.com/kestrelforge/revenant/internal/game/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPhaseForHPFraction_Thresholds(t *testing.T) {
	assert.Equal(t, ruleset.PhaseOne, ruleset.PhaseForHPFraction(1.0))
	assert.Equal(t, ruleset.PhaseOne, ruleset.PhaseForHPFraction(0.61))
	// Exactly 60% is no longer "above 60%".
	assert.Equal(t, ruleset.PhaseTwo, ruleset.PhaseForHPFraction(0.6))
	assert.Equal(t, ruleset.PhaseTwo, ruleset.PhaseForHPFraction(0.31))
	assert.Equal(t, ruleset.PhaseThree, ruleset.PhaseForHPFraction(0.3))
	assert.Equal(t, ruleset.PhaseThree, ruleset.PhaseForHPFraction(0.0))
}

// Property: lower HP never maps to an earlier phase.
func TestPhaseForHPFraction_MonotonicInHP(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(0, 1).Draw(rt, "a")
		b := rapid.Float64Range(0, 1).Draw(rt, "b")
		if a < b {
			a, b = b, a
		}
		higher := ruleset.PhaseForHPFraction(a)
		lower := ruleset.PhaseForHPFraction(b)
		if lower < higher {
			rt.Fatalf("fraction %f mapped to %s but lower fraction %f mapped to earlier %s", a, higher, b, lower)
		}
	})
}

func TestPhase_Valid(t *testing.T) {
	assert.True(t, ruleset.PhaseOne.Valid())
	assert.True(t, ruleset.PhaseTwo.Valid())
	assert.True(t, ruleset.PhaseThree.Valid())
	assert.False(t, ruleset.Phase(0).Valid())
	assert.False(t, ruleset.Phase(4).Valid())
}

func TestPhaseDef_Validate_RejectsInvertedIdleRange(t *testing.T) {
	def := ruleset.PhaseDef{
		Phase:       ruleset.PhaseOne,
		IdleMin:     3 * time.Second,
		IdleMax:     2 * time.Second,
		Speed:       0.5,
		EngageRange: 1.0,
	}
	err := def.Validate()
	require.Error(t, err)
}

func TestPhaseDef_Validate_AllowsEqualIdleBounds(t *testing.T) {
	def := ruleset.PhaseDef{
		Phase:       ruleset.PhaseTwo,
		IdleMin:     2 * time.Second,
		IdleMax:     2 * time.Second,
		Speed:       0.5,
		EngageRange: 1.0,
	}
	require.NoError(t, def.Validate())
}

func TestTuning_Validate_RejectsSlowerLaterPhase(t *testing.T) {
	tuning := ruleset.Default()
	// Later phases must be strictly faster.
	tuning.Phases[2].Speed = tuning.Phases[1].Speed
	err := tuning.Validate()
	require.Error(t, err)
}

func TestTuning_Validate_RejectsLongerLaterIdle(t *testing.T) {
	tuning := ruleset.Default()
	tuning.Phases[1].IdleMax = tuning.Phases[0].IdleMax + time.Second
	err := tuning.Validate()
	require.Error(t, err)
}

func TestTuning_Validate_RejectsMisorderedPhaseTable(t *testing.T) {
	tuning := ruleset.Default()
	tuning.Phases[0], tuning.Phases[1] = tuning.Phases[1], tuning.Phases[0]
	err := tuning.Validate()
	require.Error(t, err)
}

func TestTuning_Validate_RejectsShortPhaseTable(t *testing.T) {
	tuning := ruleset.Default()
	tuning.Phases = tuning.Phases[:2]
	err := tuning.Validate()
	require.Error(t, err)
}

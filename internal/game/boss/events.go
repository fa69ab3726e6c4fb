package boss

import "github.com/kestrelforge/revenant/internal/game/ruleset"

// EventKind tags what happened during an Update or TakeDamage call.
type EventKind int

const (
	// EventTaunted fires when the boss starts a taunt instead of an attack.
	EventTaunted EventKind = iota
	// EventAttackTelegraphed fires when an attack wind-up begins.
	EventAttackTelegraphed
	// EventAttackExecuted fires when the wind-up ends and the attack becomes
	// damaging.
	EventAttackExecuted
	// EventAttackRecovered fires when the attack's recovery completes and the
	// boss returns to idle.
	EventAttackRecovered
	// EventPhaseEntered fires the first time a phase is reached in a fight.
	EventPhaseEntered
	// EventDied fires when HP reaches zero and the dying grace begins.
	EventDied
)

// String returns the event kind's log name.
func (k EventKind) String() string {
	switch k {
	case EventTaunted:
		return "taunted"
	case EventAttackTelegraphed:
		return "attack_telegraphed"
	case EventAttackExecuted:
		return "attack_executed"
	case EventAttackRecovered:
		return "attack_recovered"
	case EventPhaseEntered:
		return "phase_entered"
	case EventDied:
		return "died"
	default:
		return "unknown"
	}
}

// Event records one observable boss occurrence. Attack is set for the three
// attack events; Phase is set for EventPhaseEntered.
type Event struct {
	Kind   EventKind
	Attack ruleset.Attack
	Phase  ruleset.Phase
}

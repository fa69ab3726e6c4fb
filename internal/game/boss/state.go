package boss

import (
	"time"

	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// StateID names the boss's current AI state for observers and logs.
type StateID int

const (
	StateIdle StateID = iota
	StateTelegraphing
	StateExecuting
	StateRecovering
	StateTaunting
	StateDying
	StateDead
)

// String returns the state's log name.
func (s StateID) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTelegraphing:
		return "telegraphing"
	case StateExecuting:
		return "executing"
	case StateRecovering:
		return "recovering"
	case StateTaunting:
		return "taunting"
	case StateDying:
		return "dying"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// aiState is the closed set of AI state variants. The current attack exists
// only inside the three attack variants, so an idle boss with a leftover
// attack is unrepresentable.
type aiState interface {
	id() StateID
}

// idleState waits out a randomized countdown between actions. armed is false
// only between Reset and BeginFight, when the AI clock has not started.
type idleState struct {
	countdown time.Duration
	armed     bool
}

func (*idleState) id() StateID { return StateIdle }

type telegraphingState struct {
	attack    ruleset.Attack
	remaining time.Duration
}

func (*telegraphingState) id() StateID { return StateTelegraphing }

type executingState struct {
	attack    ruleset.Attack
	remaining time.Duration
}

func (*executingState) id() StateID { return StateExecuting }

type recoveringState struct {
	attack    ruleset.Attack
	remaining time.Duration
}

func (*recoveringState) id() StateID { return StateRecovering }

type tauntingState struct {
	remaining time.Duration
}

func (*tauntingState) id() StateID { return StateTaunting }

// dyingState is the fixed grace interval reserved for the death presentation.
type dyingState struct {
	remaining time.Duration
}

func (*dyingState) id() StateID { return StateDying }

type deadState struct{}

func (*deadState) id() StateID { return StateDead }

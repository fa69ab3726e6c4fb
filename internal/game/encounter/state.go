package encounter

// State identifies where an experience is in its lifecycle.
type State int

const (
	// StateAwaitingSurface is the initial state: the embedding layer has not
	// yet anchored the arena, so the simulation is idle.
	StateAwaitingSurface State = iota

	// StateCombat is the live fight: the boss cycles attacks, the player can
	// swing, loot drops.
	StateCombat

	// StateBossDying is the grace beat between the killing blow and the
	// pursuit. Taps are ignored; countdowns still run.
	StateBossDying

	// StatePursuit is the chase: the boss's spirit hunts the player until
	// the countdown expires or the player falls.
	StatePursuit

	// StateVictory and StateDefeated are terminal until Retry.
	StateVictory
	StateDefeated
)

func (s State) String() string {
	switch s {
	case StateAwaitingSurface:
		return "awaiting_surface"
	case StateCombat:
		return "combat"
	case StateBossDying:
		return "boss_dying"
	case StatePursuit:
		return "pursuit"
	case StateVictory:
		return "victory"
	case StateDefeated:
		return "defeated"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the experience until a Retry.
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeated
}

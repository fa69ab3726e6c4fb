// Package rng provides the randomness abstraction for the Revenant combat
// simulation. Every gameplay draw (idle countdowns, attack selection, loot
// timing and kind) goes through a Source so that tests and replays can inject
// a deterministic implementation.
package rng

import "time"

// Source is the randomness provider for gameplay draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// DurationBetween draws a duration uniformly from [min, max] using src.
//
// Precondition: src must be non-nil; 0 <= min <= max.
// Postcondition: min <= result <= max.
func DurationBetween(src Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	spread := float64(max - min)
	return min + time.Duration(src.Float64()*spread)
}

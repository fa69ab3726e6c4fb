// Package encounter orchestrates a full boss-fight experience: the combat
// loop, the dying grace, the spirit pursuit, and the terminal outcomes. It
// owns the simulation entities (player, boss, loot scheduler, chase) and
// drives them from wall-clock ticks, translating their events into calls on
// the observer and presentation contracts defined here.
//
// The package is deliberately headless. Everything spatial is delegated to a
// SpatialOracle supplied by the embedding layer, and everything visible is
// delegated to a Stage. The core never renders, never touches the camera,
// and never blocks.
package encounter

import (
	"github.com/kestrelforge/revenant/internal/game/loot"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

// Pose is the viewer's position and planar facing as the embedding layer
// reports it each frame. The core never interprets a Pose itself; it is
// passed through verbatim to the SpatialOracle.
type Pose struct {
	X, Y, Z float64

	// FacingX, FacingZ give the planar look direction. The vector does not
	// need to be unit length; oracles normalise as required.
	FacingX, FacingZ float64
}

// Snapshot is the consolidated combat projection published once per tick so
// observers can redraw gauges without tracking individual deltas.
type Snapshot struct {
	PlayerHP       int
	BossHPFraction float64
	Distance       float64
}

// SpatialOracle answers the core's spatial queries against the embedding
// layer's world model. Implementations must be cheap; every query may be
// issued once per frame.
//
// During the pursuit the spirit rises from the boss's anchor, so
// DistanceToBoss doubles as the distance to the spirit.
type SpatialOracle interface {
	// DistanceToBoss returns the planar distance in metres from the viewer
	// to the boss anchor.
	DistanceToBoss(pose Pose) float64

	// ViewerBehindBoss reports whether the viewer is outside the boss's
	// forward arc. Frontal-only attacks cannot land while this is true.
	ViewerBehindBoss(pose Pose) bool

	// DistanceToLoot returns the planar distance from the viewer to the
	// identified loot drop, or false if the drop is no longer placed. The
	// combat tick sweeps live drops with this query: within pickup range
	// collects them, false forgets them.
	DistanceToLoot(id string, pose Pose) (float64, bool)
}

// EventSink receives the observer events of an experience. Implementations
// must not block and must not call back into the Experience; callbacks run
// on the tick goroutine while internal state is locked.
type EventSink interface {
	// StateTransitioned fires on every experience state change, after the
	// change is applied.
	StateTransitioned(state State)

	// CombatSnapshot fires once per combat tick with the consolidated
	// projection for gauges and distance meters.
	CombatSnapshot(snap Snapshot)

	// PlayerDamaged fires whenever a boss attack or a spirit touch lands on
	// the player. Absorbed hits do not fire it.
	PlayerDamaged(hp int)

	// BossAttacked fires when a boss attack reaches its damage moment,
	// whether or not the player was in harm's way.
	BossAttacked(attack ruleset.Attack)

	// BossPhaseEntered fires once per phase, the first time the boss's
	// health crosses into it.
	BossPhaseEntered(phase ruleset.Phase)

	// PlayerHitBoss fires when a swing lands, after the damage is applied.
	PlayerHitBoss(hpFraction float64)

	// PlayerSwung fires for every swing that passed the cooldown gate,
	// landed or not.
	PlayerSwung(hit bool)

	// LootPickedUp fires after a reported pickup's effect is applied.
	LootPickedUp(kind loot.Kind)

	// RapidExpired fires once when the rapid-strikes buff runs out.
	RapidExpired()

	// ChaseTick fires once per pursuit tick while the outcome is undecided.
	ChaseTick(secondsLeft float64)
}

// Stage receives fire-and-forget presentation commands. Implementations must
// not block and must not call back into the Experience.
type Stage interface {
	// SpawnLoot asks the stage to place a freshly minted drop near the
	// arena. Placement is the stage's choice; the core only mints.
	SpawnLoot(inst loot.Instance)

	// DriveSpirit steers the pursuit spirit. Fired every pursuit tick while
	// the outcome is undecided; retreating means the spirit should back off
	// after a touch.
	DriveSpirit(speed float64, retreating bool)

	// BossTaunted, BossTelegraphed, BossExecuted, BossRecovered, BossHit and
	// BossDied key the boss animation and audio playback.
	BossTaunted()
	BossTelegraphed(attack ruleset.Attack)
	BossExecuted(attack ruleset.Attack)
	BossRecovered(attack ruleset.Attack)
	BossHit()
	BossDied()
}

// NopSink is an EventSink that ignores every event. Embed it to implement
// only the callbacks a consumer cares about.
type NopSink struct{}

func (NopSink) StateTransitioned(State)        {}
func (NopSink) CombatSnapshot(Snapshot)        {}
func (NopSink) PlayerDamaged(int)              {}
func (NopSink) BossAttacked(ruleset.Attack)    {}
func (NopSink) BossPhaseEntered(ruleset.Phase) {}
func (NopSink) PlayerHitBoss(float64)          {}
func (NopSink) PlayerSwung(bool)               {}
func (NopSink) LootPickedUp(loot.Kind)         {}
func (NopSink) RapidExpired()                  {}
func (NopSink) ChaseTick(float64)              {}

// NopStage is a Stage that ignores every command.
type NopStage struct{}

func (NopStage) SpawnLoot(loot.Instance)        {}
func (NopStage) DriveSpirit(float64, bool)      {}
func (NopStage) BossTaunted()                   {}
func (NopStage) BossTelegraphed(ruleset.Attack) {}
func (NopStage) BossExecuted(ruleset.Attack)    {}
func (NopStage) BossRecovered(ruleset.Attack)   {}
func (NopStage) BossHit()                       {}
func (NopStage) BossDied()                      {}

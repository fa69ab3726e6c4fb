package encounter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelforge/revenant/internal/game/boss"
	"github.com/kestrelforge/revenant/internal/game/loot"
	"github.com/kestrelforge/revenant/internal/game/player"
	"github.com/kestrelforge/revenant/internal/game/pursuit"
	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

const (
	// nominalFrame is the step charged for the first tick after a start or
	// resume, when no previous tick exists to measure against.
	nominalFrame = time.Second / 60

	// DefaultMaxFrameDelta caps how much simulation time a single tick may
	// advance. Frame stalls longer than this slow the simulation down
	// instead of teleporting it forward.
	DefaultMaxFrameDelta = 250 * time.Millisecond
)

// Config carries everything an Experience needs. Tuning, Source and Oracle
// are required; the rest default to inert implementations when nil or zero.
type Config struct {
	Tuning ruleset.Tuning
	Source rng.Source
	Oracle SpatialOracle

	// Sink and Stage receive observer events and presentation commands.
	// nil means discard.
	Sink  EventSink
	Stage Stage

	// MaxFrameDelta overrides DefaultMaxFrameDelta when > 0.
	MaxFrameDelta time.Duration

	// Logger logs lifecycle transitions. nil means no logging.
	Logger *zap.Logger
}

// Experience runs one boss fight end to end: waiting for an arena anchor,
// the combat loop, the dying grace, the spirit pursuit and the terminal
// outcomes. It owns the player, boss, loot scheduler and chase, and is the
// only writer to any of them.
//
// All methods are safe for concurrent use. Sink, Stage and timeline
// callbacks run on the calling goroutine while internal state is locked, so
// they must not call back into the Experience.
type Experience struct {
	mu sync.Mutex

	// Collaborators, fixed at construction.
	tuning   ruleset.Tuning
	oracle   SpatialOracle
	sink     EventSink
	stage    Stage
	logger   *zap.Logger
	maxDelta time.Duration

	// Simulation entities. chase is nil until the pursuit begins.
	player *player.State
	boss   *boss.Boss
	loot   *loot.Scheduler
	chase  *pursuit.Chase

	// liveLoot tracks minted drops the stage has not yet reported gone,
	// keyed by instance ID.
	liveLoot map[string]loot.Instance

	// timeline is the logical clock driven by ticks, for delayed beats.
	timeline *Timeline

	// state is the lifecycle position; suspended freezes ticking without
	// losing it.
	state     State
	suspended bool

	// lastTick anchors delta measurement; firstTick forces the next tick to
	// charge nominalFrame instead of measuring.
	lastTick  time.Time
	firstTick bool
}

// New builds an Experience in StateAwaitingSurface.
//
// Precondition: cfg.Source and cfg.Oracle must be non-nil; cfg.Tuning must
// validate.
// Postcondition: Returns a ready Experience that does nothing until
// SurfaceFound.
func New(cfg Config) (*Experience, error) {
	if cfg.Source == nil {
		return nil, errors.New("encounter: rng source must not be nil")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("encounter: spatial oracle must not be nil")
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("validating tuning: %w", err)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	stage := cfg.Stage
	if stage == nil {
		stage = NopStage{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxDelta := cfg.MaxFrameDelta
	if maxDelta <= 0 {
		maxDelta = DefaultMaxFrameDelta
	}
	return &Experience{
		tuning:    cfg.Tuning,
		oracle:    cfg.Oracle,
		sink:      sink,
		stage:     stage,
		logger:    logger,
		maxDelta:  maxDelta,
		player:    player.NewState(cfg.Tuning.Player),
		boss:      boss.New(cfg.Tuning, cfg.Source),
		loot:      loot.NewScheduler(cfg.Tuning.Loot, cfg.Source),
		liveLoot:  make(map[string]loot.Instance),
		timeline:  NewTimeline(),
		state:     StateAwaitingSurface,
		firstTick: true,
	}, nil
}

// SurfaceFound reports that the embedding layer anchored the arena. The
// fight arms and enters combat. Calls outside StateAwaitingSurface are
// ignored.
func (e *Experience) SurfaceFound() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateAwaitingSurface {
		return
	}
	e.boss.BeginFight()
	e.firstTick = true
	e.transition(StateCombat)
}

// Tick advances the experience to now, charging at most MaxFrameDelta of
// simulation time. The first tick after construction, SurfaceFound or
// Resume charges a nominal frame instead of measuring against a stale
// anchor. Ticks while suspended are ignored.
func (e *Experience) Tick(now time.Time, pose Pose) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suspended {
		return
	}
	dt := e.delta(now)
	e.timeline.Advance(dt)
	switch e.state {
	case StateCombat:
		e.combatTick(dt, pose)
	case StateBossDying:
		e.dyingTick(dt, pose)
	case StatePursuit:
		e.pursuitTick(dt, pose)
	}
}

func (e *Experience) delta(now time.Time) time.Duration {
	if e.firstTick {
		e.firstTick = false
		e.lastTick = now
		return nominalFrame
	}
	dt := now.Sub(e.lastTick)
	e.lastTick = now
	if dt < 0 {
		dt = 0
	}
	if dt > e.maxDelta {
		dt = e.maxDelta
	}
	return dt
}

func (e *Experience) combatTick(dt time.Duration, pose Pose) {
	if e.player.Update(dt) {
		e.sink.RapidExpired()
	}
	distance := e.oracle.DistanceToBoss(pose)
	for _, ev := range e.boss.Update(dt, distance) {
		e.dispatchBossEvent(ev, distance, pose)
	}
	e.resolveExecutingHit(distance, pose)
	if !e.player.Alive() {
		e.transition(StateDefeated)
		return
	}
	for _, inst := range e.loot.Tick(dt) {
		e.liveLoot[inst.ID] = inst
		e.stage.SpawnLoot(inst)
	}
	e.resolveLootProximity(pose)
	e.sink.CombatSnapshot(Snapshot{
		PlayerHP:       e.player.HP(),
		BossHPFraction: e.boss.HPFraction(),
		Distance:       distance,
	})
}

func (e *Experience) dyingTick(dt time.Duration, pose Pose) {
	if e.player.Update(dt) {
		e.sink.RapidExpired()
	}
	e.boss.Update(dt, e.oracle.DistanceToBoss(pose))
	if e.boss.StateID() == boss.StateDead {
		e.chase = pursuit.NewChase(e.tuning.Pursuit, e.player)
		e.transition(StatePursuit)
	}
}

func (e *Experience) pursuitTick(dt time.Duration, pose Pose) {
	if e.player.Update(dt) {
		e.sink.RapidExpired()
	}
	distance := e.oracle.DistanceToBoss(pose)
	for _, ev := range e.chase.Tick(dt, distance) {
		switch ev.Kind {
		case pursuit.EventTouched:
			e.sink.PlayerDamaged(e.player.HP())
		case pursuit.EventTick:
			e.sink.ChaseTick(ev.SecondsLeft)
		case pursuit.EventVictory:
			e.transition(StateVictory)
		case pursuit.EventDefeat:
			e.transition(StateDefeated)
		}
	}
	if e.chase.Outcome() == pursuit.OutcomeUndecided {
		speed, retreating := e.chase.Guidance()
		e.stage.DriveSpirit(speed, retreating)
	}
}

// resolveExecutingHit applies the boss's damage while an attack's execute
// window is open and the viewer stands inside it. The player's
// invulnerability window absorbs the repeats that per-tick polling would
// otherwise land.
func (e *Experience) resolveExecutingHit(distance float64, pose Pose) {
	if e.boss.StateID() != boss.StateExecuting {
		return
	}
	attack, ok := e.boss.CurrentAttack()
	if !ok {
		return
	}
	if distance > attack.Radius {
		return
	}
	if attack.FrontalOnly && e.oracle.ViewerBehindBoss(pose) {
		return
	}
	if e.player.TakeDamage(attack.Damage) {
		e.sink.PlayerDamaged(e.player.HP())
	}
}

// dispatchBossEvent fans a boss event out to the sink and stage. Damage for
// a freshly opened execute window resolves here so it cannot be skipped
// when a single large tick steps through the whole window.
func (e *Experience) dispatchBossEvent(ev boss.Event, distance float64, pose Pose) {
	switch ev.Kind {
	case boss.EventTaunted:
		e.stage.BossTaunted()
	case boss.EventAttackTelegraphed:
		e.stage.BossTelegraphed(ev.Attack)
	case boss.EventAttackExecuted:
		e.sink.BossAttacked(ev.Attack)
		e.stage.BossExecuted(ev.Attack)
		e.resolveExecutingHit(distance, pose)
	case boss.EventAttackRecovered:
		e.stage.BossRecovered(ev.Attack)
	case boss.EventPhaseEntered:
		e.sink.BossPhaseEntered(ev.Phase)
	case boss.EventDied:
		e.stage.BossDied()
		e.transition(StateBossDying)
	}
}

// HandleTap resolves one attack gesture at the given wall time. The swing
// happens only in combat and only once the attack cooldown has elapsed;
// gated taps are dropped without an event.
func (e *Experience) HandleTap(now time.Time, pose Pose) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suspended || e.state != StateCombat {
		return
	}
	if !e.player.CanAttack(now) {
		return
	}
	e.player.RecordAttack(now)
	distance := e.oracle.DistanceToBoss(pose)
	hit := distance <= e.player.AttackRange()
	e.sink.PlayerSwung(hit)
	if !hit {
		return
	}
	events := e.boss.TakeDamage(e.player.AttackDamage())
	e.sink.PlayerHitBoss(e.boss.HPFraction())
	e.stage.BossHit()
	for _, ev := range events {
		e.dispatchBossEvent(ev, distance, pose)
	}
}

// PickupLoot applies a pickup the embedding layer resolved itself, such as a
// tap directly on a drop. Walk-over pickups need no call here; the combat
// tick sweeps live drops against the oracle. Pickups outside combat are
// ignored.
func (e *Experience) PickupLoot(kind loot.Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suspended || e.state != StateCombat {
		return
	}
	e.applyPickup(kind)
}

// resolveLootProximity sweeps the live drops against the oracle: a drop the
// viewer has reached is collected, and a drop the oracle no longer knows is
// forgotten. IDs are walked in order so same-tick pickups resolve
// deterministically.
func (e *Experience) resolveLootProximity(pose Pose) {
	if len(e.liveLoot) == 0 {
		return
	}
	ids := make([]string, 0, len(e.liveLoot))
	for id := range e.liveLoot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		inst := e.liveLoot[id]
		distance, ok := e.oracle.DistanceToLoot(id, pose)
		if !ok {
			delete(e.liveLoot, id)
			continue
		}
		if distance > inst.PickupRange {
			continue
		}
		delete(e.liveLoot, id)
		e.applyPickup(inst.Kind)
	}
}

// applyPickup mutates the player for one collected drop: healing restores
// the tuned amount, rapid re-arms the buff at full duration.
func (e *Experience) applyPickup(kind loot.Kind) {
	switch kind {
	case loot.KindHealing:
		e.player.Heal(e.tuning.Player.HealAmount)
	case loot.KindRapid:
		e.player.ActivateRapid()
	default:
		return
	}
	e.sink.LootPickedUp(kind)
}

// LootGone drops a minted instance from the live set, whether it despawned,
// expired or was picked up. Unknown IDs are ignored.
func (e *Experience) LootGone(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.liveLoot, id)
}

// Suspend freezes the experience: ticks and taps are ignored and every
// pending timeline entry is cancelled. Suspending twice is a no-op.
func (e *Experience) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suspended {
		return
	}
	e.suspended = true
	e.timeline.CancelAll()
	e.logger.Info("experience suspended", zap.Stringer("state", e.state))
}

// Resume unfreezes a suspended experience. The next tick charges a nominal
// frame, so time spent suspended never reaches the simulation.
func (e *Experience) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.suspended {
		return
	}
	e.suspended = false
	e.firstTick = true
	e.logger.Info("experience resumed", zap.Stringer("state", e.state))
}

// Retry rebuilds the fight from the same tuning: fresh player, fresh boss,
// fresh loot schedule, no chase. It works from a terminal state or
// mid-fight, and always lands in combat with the fight armed. Before the
// arena has anchored there is nothing to retry, so the call is ignored.
func (e *Experience) Retry() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateAwaitingSurface {
		return
	}
	e.player.Reset()
	e.boss.Reset()
	e.boss.BeginFight()
	e.loot.Reset()
	e.chase = nil
	e.liveLoot = make(map[string]loot.Instance)
	e.timeline.CancelAll()
	e.firstTick = true

	// Unlike transition, a retry announces even when the state was already
	// combat; re-entering is how observers learn the fight reset.
	prev := e.state
	e.state = StateCombat
	e.logger.Info("experience state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", StateCombat),
		zap.Bool("retry", true))
	e.sink.StateTransitioned(StateCombat)
}

func (e *Experience) transition(next State) {
	if e.state == next {
		return
	}
	prev := e.state
	e.state = next
	e.logger.Info("experience state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next))
	e.sink.StateTransitioned(next)
}

// State returns the current lifecycle state.
func (e *Experience) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Suspended reports whether ticking is frozen.
func (e *Experience) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended
}

// PlayerHP returns the player's current hit points.
func (e *Experience) PlayerHP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.HP()
}

// BossHPFraction returns the boss's remaining health in [0, 1].
func (e *Experience) BossHPFraction() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boss.HPFraction()
}

// BossPacing returns the boss's current movement speed (m/s) and desired
// engagement distance (meters). The presentation layer moves the boss model
// with these; the simulation itself never positions anything.
func (e *Experience) BossPacing() (speed, engageRange float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boss.Speed(), e.boss.EngageRange()
}

// LiveLoot returns the minted drops not yet reported gone, ordered by ID.
func (e *Experience) LiveLoot() []loot.Instance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]loot.Instance, 0, len(e.liveLoot))
	for _, inst := range e.liveLoot {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Timeline exposes the experience's logical clock so the embedding layer
// can sequence its own beats against simulation time.
func (e *Experience) Timeline() *Timeline {
	return e.timeline
}

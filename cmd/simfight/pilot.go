package main

import (
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelforge/revenant/internal/game/encounter"
	"github.com/kestrelforge/revenant/internal/game/loot"
	"github.com/kestrelforge/revenant/internal/game/rng"
	"github.com/kestrelforge/revenant/internal/game/ruleset"
)

const (
	// walkSpeed is how fast the scripted player moves in combat (m/s).
	walkSpeed = 1.4
	// fleeSpeed is how fast the scripted player runs during the chase.
	// Slower than most spirit ramps, so long chases stay dangerous.
	fleeSpeed = 1.1
	// spawnDistance is where the player stands when the arena anchors.
	spawnDistance = 4.0
	// standFraction places the player's combat position inside attack range.
	standFraction = 0.9
	// dodgeMargin is the clearance kept beyond an attack's radius while a
	// noticed swing is in flight.
	dodgeMargin = 0.4
	// dodgeChance is the probability the pilot notices a telegraph in time
	// to move. Misses are what make fights bloody.
	dodgeChance = 0.7
	// lootRingMin and lootRingMax bound the drop ring around the anchor.
	lootRingMin = 1.5
	lootRingMax = 2.5
	// eyeHeight approximates a held phone's camera height in metres.
	eyeHeight = 1.5
	// retryDelay is how long a finished fight lingers before a watch-mode
	// run resets it.
	retryDelay = 3 * time.Second
	// openingTipDelay is how far into a fight the coaching tip appears.
	openingTipDelay = 5 * time.Second
	// maxStepDelta bounds the wall-clock gap fed into pilot movement.
	maxStepDelta = 250 * time.Millisecond
)

// placedLoot is a minted drop pinned to arena coordinates with a despawn
// deadline. The engine only decides that loot exists; where it lands and
// when it disappears is presentation, which in this harness is the pilot.
type placedLoot struct {
	inst      loot.Instance
	x, z      float64
	expiresAt time.Time
}

// pilot is the scripted stand-in for a phone-wielding player. It owns the
// toy arena geometry (its own position, the boss/spirit anchor, loot
// placements), answers the experience's spatial queries from that geometry,
// and steers: it closes to swing range, taps on cooldown, backs out of
// noticed telegraphs, detours for loot, and runs from the spirit during the
// chase. It also plays stagehand, moving the boss at its phase pacing and
// the spirit on chase guidance.
//
// Every field is owned by the frame goroutine; the one exception is pending,
// which the tuning watcher writes from its own goroutine.
type pilot struct {
	logger   *zap.Logger
	src      rng.Source
	sink     encounter.EventSink
	watch    bool
	quit     func()
	maxDelta time.Duration

	exp    *encounter.Experience
	tuning ruleset.Tuning

	// arena geometry
	x, z             float64
	spiritX, spiritZ float64
	lootOut          map[string]*placedLoot

	// threat is the telegraphed attack currently in flight, nil between
	// swings. While set, the boss's facing stays frozen at the telegraph
	// heading.
	threat                   *ruleset.Attack
	dodging                  bool
	bossFacingX, bossFacingZ float64

	// last chase guidance from the experience
	spiritSpeed   float64
	spiritRetreat bool

	lastStep  time.Time
	firstStep bool

	terminalAt time.Time
	reported   bool

	pending atomic.Pointer[ruleset.Tuning]
}

// newPilot builds the scripted player, its arena, and the experience it
// drives. The fight starts immediately: a headless run has no surface scan
// to wait for.
func newPilot(tuning ruleset.Tuning, src rng.Source, maxDelta time.Duration, watch bool, quit func(), logger *zap.Logger) (*pilot, error) {
	p := &pilot{
		logger:   logger,
		src:      src,
		sink:     &eventLogger{logger: logger},
		watch:    watch,
		quit:     quit,
		maxDelta: maxDelta,
		tuning:   tuning,
	}
	exp, err := encounter.New(encounter.Config{
		Tuning:        tuning,
		Source:        src,
		Oracle:        p,
		Sink:          p.sink,
		Stage:         p,
		MaxFrameDelta: maxDelta,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	p.exp = exp
	p.resetArena()
	exp.SurfaceFound()
	p.scheduleOpeningTip()
	return p, nil
}

// scheduleOpeningTip queues the coaching tip on the experience's logical
// clock. Riding the timeline instead of a wall timer means a retry or
// suspension discards it along with everything else pending.
func (p *pilot) scheduleOpeningTip() {
	p.exp.Timeline().Schedule(openingTipDelay, func() {
		p.logger.Info("tip shown",
			zap.String("text", "circle behind the boss to slip its frontal swings"))
	})
}

// ProposeTuning hands a validated tuning to the frame goroutine, which swaps
// it in at the next frame boundary. Safe to call from any goroutine.
func (p *pilot) ProposeTuning(t ruleset.Tuning) {
	p.pending.Store(&t)
}

// Step advances the toy world by one frame. It is the runner's tick callback
// and the only place that drives the experience.
func (p *pilot) Step(now time.Time) {
	var dt time.Duration
	if p.firstStep {
		p.firstStep = false
	} else {
		dt = now.Sub(p.lastStep)
		if dt < 0 {
			dt = 0
		}
		if dt > maxStepDelta {
			dt = maxStepDelta
		}
	}
	p.lastStep = now

	p.applyPending()

	st := p.exp.State()
	if st.Terminal() {
		p.finishOrRetry(now, st)
		return
	}

	switch st {
	case encounter.StateCombat:
		p.combatMove(dt)
	case encounter.StatePursuit:
		p.fleeMove(dt)
	}

	p.exp.Tick(now, p.pose())

	switch p.exp.State() {
	case encounter.StateCombat:
		p.tendLoot(now)
		p.stalk(dt)
		p.tryTap(now)
	case encounter.StatePursuit:
		p.moveSpirit(dt)
		p.flushLoot()
	default:
		p.flushLoot()
	}
}

// applyPending rebuilds the experience around a hot-swapped tuning. The
// running fight is discarded; tuning sessions want to see the new numbers
// from the opening taunt.
func (p *pilot) applyPending() {
	t := p.pending.Swap(nil)
	if t == nil {
		return
	}
	exp, err := encounter.New(encounter.Config{
		Tuning:        *t,
		Source:        p.src,
		Oracle:        p,
		Sink:          p.sink,
		Stage:         p,
		MaxFrameDelta: p.maxDelta,
		Logger:        p.logger,
	})
	if err != nil {
		p.logger.Warn("rebuilding experience with new tuning", zap.Error(err))
		return
	}
	p.tuning = *t
	p.exp = exp
	p.resetArena()
	exp.SurfaceFound()
	p.scheduleOpeningTip()
	p.logger.Info("tuning applied, fight restarted")
}

// finishOrRetry reports a finished fight once, then either restarts it
// (watch mode) or ends the run.
func (p *pilot) finishOrRetry(now time.Time, st encounter.State) {
	if !p.reported {
		p.reported = true
		p.terminalAt = now
		p.logger.Info("fight over",
			zap.Stringer("outcome", st),
			zap.Int("player_hp", p.exp.PlayerHP()),
			zap.Float64("boss_hp_fraction", p.exp.BossHPFraction()),
		)
	}
	if now.Sub(p.terminalAt) < retryDelay {
		return
	}
	if p.watch {
		p.logger.Info("restarting fight")
		p.exp.Retry()
		p.resetArena()
		p.scheduleOpeningTip()
		return
	}
	p.quit()
}

// resetArena puts the toy world back at the opening tableau: the boss on its
// anchor, the player at spawn distance, nothing on the ground.
func (p *pilot) resetArena() {
	p.x, p.z = 0, spawnDistance
	p.spiritX, p.spiritZ = 0, 0
	p.lootOut = make(map[string]*placedLoot)
	p.threat = nil
	p.dodging = false
	p.bossFacingX, p.bossFacingZ = 0, 0
	p.spiritSpeed = 0
	p.spiritRetreat = false
	p.firstStep = true
	p.terminalAt = time.Time{}
	p.reported = false
}

// combatMove steers the player for one combat frame. A noticed swing
// overrides everything; loot is next; otherwise hold swing range.
func (p *pilot) combatMove(dt time.Duration) {
	bossDist := math.Hypot(p.spiritX-p.x, p.spiritZ-p.z)

	if p.threat != nil && p.dodging {
		clearance := p.threat.Radius + dodgeMargin
		if bossDist < clearance {
			p.moveAwayFromBoss(clearance, dt)
		}
		return
	}

	if target := p.nearestLoot(); target != nil {
		p.moveToward(target.x, target.z, dt)
		return
	}

	stand := p.tuning.Player.AttackRange * standFraction
	if bossDist > stand {
		p.moveTowardBoss(stand, dt)
	}
}

// fleeMove runs directly away from the spirit.
func (p *pilot) fleeMove(dt time.Duration) {
	dx, dz := p.x-p.spiritX, p.z-p.spiritZ
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		dx, dz, dist = 0, 1, 1
	}
	step := fleeSpeed * dt.Seconds()
	p.x += dx / dist * step
	p.z += dz / dist * step
}

// stalk moves the boss toward the player at its phase pacing; it holds
// still while a swing is in flight.
func (p *pilot) stalk(dt time.Duration) {
	if p.threat != nil {
		return
	}
	speed, engage := p.exp.BossPacing()
	dx, dz := p.x-p.spiritX, p.z-p.spiritZ
	dist := math.Hypot(dx, dz)
	if dist <= engage {
		return
	}
	step := math.Min(speed*dt.Seconds(), dist-engage)
	p.spiritX += dx / dist * step
	p.spiritZ += dz / dist * step
}

// moveSpirit applies the last chase guidance: toward the player while
// hunting, away while retreating after a touch.
func (p *pilot) moveSpirit(dt time.Duration) {
	dx, dz := p.x-p.spiritX, p.z-p.spiritZ
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return
	}
	step := p.spiritSpeed * dt.Seconds()
	if p.spiritRetreat {
		step = -step
	}
	p.spiritX += dx / dist * step
	p.spiritZ += dz / dist * step
}

func (p *pilot) moveToward(tx, tz float64, dt time.Duration) {
	dx, dz := tx-p.x, tz-p.z
	dist := math.Hypot(dx, dz)
	if dist == 0 {
		return
	}
	step := math.Min(walkSpeed*dt.Seconds(), dist)
	p.x += dx / dist * step
	p.z += dz / dist * step
}

func (p *pilot) moveTowardBoss(stopAt float64, dt time.Duration) {
	dx, dz := p.spiritX-p.x, p.spiritZ-p.z
	dist := math.Hypot(dx, dz)
	if dist <= stopAt {
		return
	}
	step := math.Min(walkSpeed*dt.Seconds(), dist-stopAt)
	p.x += dx / dist * step
	p.z += dz / dist * step
}

func (p *pilot) moveAwayFromBoss(outTo float64, dt time.Duration) {
	dx, dz := p.x-p.spiritX, p.z-p.spiritZ
	dist := math.Hypot(dx, dz)
	if dist >= outTo {
		return
	}
	if dist == 0 {
		dx, dz, dist = 0, 1, 1
	}
	step := math.Min(walkSpeed*dt.Seconds(), outTo-dist)
	p.x += dx / dist * step
	p.z += dz / dist * step
}

func (p *pilot) nearestLoot() *placedLoot {
	var best *placedLoot
	bestDist := math.Inf(1)
	for _, pl := range p.lootOut {
		d := math.Hypot(pl.x-p.x, pl.z-p.z)
		if d < bestDist {
			best, bestDist = pl, d
		}
	}
	return best
}

// tendLoot expires placements past their TTL and drops any the engine has
// already collected or forgotten.
func (p *pilot) tendLoot(now time.Time) {
	if len(p.lootOut) == 0 {
		return
	}
	for id, pl := range p.lootOut {
		if now.After(pl.expiresAt) {
			delete(p.lootOut, id)
			p.exp.LootGone(id)
			p.logger.Debug("loot despawned",
				zap.String("id", id),
				zap.Stringer("kind", pl.inst.Kind),
			)
		}
	}
	live := make(map[string]struct{}, len(p.lootOut))
	for _, inst := range p.exp.LiveLoot() {
		live[inst.ID] = struct{}{}
	}
	for id := range p.lootOut {
		if _, ok := live[id]; !ok {
			delete(p.lootOut, id)
		}
	}
}

// flushLoot clears the ground outside combat; nothing is collectable there.
func (p *pilot) flushLoot() {
	if len(p.lootOut) == 0 {
		return
	}
	for id := range p.lootOut {
		p.exp.LootGone(id)
	}
	p.lootOut = make(map[string]*placedLoot)
}

// tryTap swings whenever the boss is in reach and the pilot is not busy
// dodging. The experience owns the cooldown gate.
func (p *pilot) tryTap(now time.Time) {
	if p.threat != nil && p.dodging {
		return
	}
	dist := math.Hypot(p.spiritX-p.x, p.spiritZ-p.z)
	if dist <= p.tuning.Player.AttackRange {
		p.exp.HandleTap(now, p.pose())
	}
}

// pose reports the player's position facing the boss anchor.
func (p *pilot) pose() encounter.Pose {
	fx, fz := p.spiritX-p.x, p.spiritZ-p.z
	if n := math.Hypot(fx, fz); n > 0 {
		fx, fz = fx/n, fz/n
	} else {
		fx, fz = 0, 1
	}
	return encounter.Pose{X: p.x, Y: eyeHeight, Z: p.z, FacingX: fx, FacingZ: fz}
}

// DistanceToBoss answers from the arena geometry. During the chase the
// spirit rises from the same anchor, so one distance serves both.
func (p *pilot) DistanceToBoss(pose encounter.Pose) float64 {
	return math.Hypot(p.spiritX-pose.X, p.spiritZ-pose.Z)
}

// ViewerBehindBoss reports whether pose sits outside the boss's frontal
// arc. The toy boss tracks the player continuously except while a swing is
// in flight, when its facing stays frozen at the telegraph heading.
func (p *pilot) ViewerBehindBoss(pose encounter.Pose) bool {
	if p.threat == nil {
		return false
	}
	dx, dz := pose.X-p.spiritX, pose.Z-p.spiritZ
	return p.bossFacingX*dx+p.bossFacingZ*dz < 0
}

func (p *pilot) DistanceToLoot(id string, pose encounter.Pose) (float64, bool) {
	pl, ok := p.lootOut[id]
	if !ok {
		return 0, false
	}
	return math.Hypot(pl.x-pose.X, pl.z-pose.Z), true
}

// SpawnLoot drops the minted instance on a ring around the arena anchor.
func (p *pilot) SpawnLoot(inst loot.Instance) {
	angle := p.src.Float64() * 2 * math.Pi
	radius := lootRingMin + p.src.Float64()*(lootRingMax-lootRingMin)
	pl := &placedLoot{
		inst:      inst,
		x:         p.spiritX + math.Cos(angle)*radius,
		z:         p.spiritZ + math.Sin(angle)*radius,
		expiresAt: p.lastStep.Add(inst.TTL),
	}
	p.lootOut[inst.ID] = pl
	p.logger.Info("loot placed",
		zap.String("id", inst.ID),
		zap.Stringer("kind", inst.Kind),
		zap.Float64("x", pl.x),
		zap.Float64("z", pl.z),
	)
}

// DriveSpirit records the chase guidance; movement happens after the tick.
func (p *pilot) DriveSpirit(speed float64, retreating bool) {
	p.spiritSpeed = speed
	p.spiritRetreat = retreating
}

func (p *pilot) BossTaunted() {
	p.logger.Info("boss taunts")
}

// BossTelegraphed freezes the boss's facing at the telegraph heading and
// rolls whether the pilot notices in time to dodge.
func (p *pilot) BossTelegraphed(a ruleset.Attack) {
	p.threat = &a
	fx, fz := p.x-p.spiritX, p.z-p.spiritZ
	if n := math.Hypot(fx, fz); n > 0 {
		p.bossFacingX, p.bossFacingZ = fx/n, fz/n
	}
	p.dodging = p.src.Float64() < dodgeChance
	p.logger.Info("boss telegraphs",
		zap.String("attack", a.ID),
		zap.Float64("radius", a.Radius),
		zap.Bool("frontal", a.FrontalOnly),
		zap.Bool("noticed", p.dodging),
	)
}

// BossExecuted keeps the threat live through the execute window.
func (p *pilot) BossExecuted(a ruleset.Attack) {
	p.threat = &a
}

func (p *pilot) BossRecovered(ruleset.Attack) {
	p.threat = nil
	p.dodging = false
}

// BossHit is a flinch cue; the headless arena has nothing to shake.
func (p *pilot) BossHit() {}

func (p *pilot) BossDied() {
	p.threat = nil
	p.dodging = false
	p.logger.Info("boss falls")
}

// eventLogger narrates the fight's observer events into the structured log.
// State transitions are left out; the experience logs those itself.
type eventLogger struct {
	encounter.NopSink
	logger *zap.Logger
}

func (s *eventLogger) CombatSnapshot(snap encounter.Snapshot) {
	s.logger.Debug("combat snapshot",
		zap.Int("player_hp", snap.PlayerHP),
		zap.Float64("boss_hp_fraction", snap.BossHPFraction),
		zap.Float64("distance", snap.Distance),
	)
}

func (s *eventLogger) PlayerDamaged(hp int) {
	s.logger.Info("player damaged", zap.Int("hp", hp))
}

func (s *eventLogger) BossAttacked(a ruleset.Attack) {
	s.logger.Info("boss attacks",
		zap.String("attack", a.ID),
		zap.Int("damage", a.Damage),
	)
}

func (s *eventLogger) BossPhaseEntered(ph ruleset.Phase) {
	s.logger.Info("boss phase entered", zap.Stringer("phase", ph))
}

func (s *eventLogger) PlayerHitBoss(hpFraction float64) {
	s.logger.Info("player hit boss", zap.Float64("boss_hp_fraction", hpFraction))
}

func (s *eventLogger) PlayerSwung(hit bool) {
	s.logger.Debug("player swung", zap.Bool("hit", hit))
}

func (s *eventLogger) LootPickedUp(kind loot.Kind) {
	s.logger.Info("loot picked up", zap.Stringer("kind", kind))
}

func (s *eventLogger) RapidExpired() {
	s.logger.Info("rapid buff expired")
}

func (s *eventLogger) ChaseTick(secondsLeft float64) {
	s.logger.Debug("chase tick", zap.Float64("seconds_left", secondsLeft))
}

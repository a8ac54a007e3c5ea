package snooker

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/playmatatu/snooker/internal/physics"
)

// Game is one snooker table: ball registry, referee, shot controller,
// recorder and scheduler bound to a physics world. It is not safe for
// concurrent use; callers serialize access.
type Game struct {
	opts     Options
	world    Physics
	reg      *Registry
	match    *MatchState
	referee  *Referee
	ctrl     *ShotController
	sched    Scheduler
	recorder Recorder
	rack     RackSpec
	rng      *rand.Rand
	notify   Notifier
	dt       time.Duration
	tick     uint64
	uiFocus  [2]bool
}

// sleeper is a world that stops bodies below a speed threshold.
type sleeper interface {
	SetSleepSpeed(v float64)
}

// Snapshot is a read-only view of a game.
type Snapshot struct {
	Tick           uint64      `json:"tick"`
	Match          MatchState  `json:"match"`
	Phase          ShotPhase   `json:"phase"`
	Balls          []BallState `json:"balls"`
	Aim            *AimState   `json:"aim,omitempty"`
	DZone          DZone       `json:"d_zone"`
	Replaying      bool        `json:"replaying"`
	RespawnPending bool        `json:"respawn_pending"`
	RerackPending  bool        `json:"rerack_pending"`
}

// NewGame racks a new frame on world. A nil world is an initialization
// failure.
func NewGame(world Physics, opts Options) (*Game, error) {
	if world == nil {
		return nil, errors.New("snooker: physics world is required")
	}
	opts = opts.withDefaults()
	if _, err := ParseRulesMode(string(opts.RulesMode)); err != nil {
		return nil, fmt.Errorf("snooker: %w", err)
	}
	if _, err := ParseLayoutMode(string(opts.Layout)); err != nil {
		return nil, fmt.Errorf("snooker: %w", err)
	}

	// Nothing may drift once the table is judged at rest.
	if s, ok := world.(sleeper); ok {
		s.SetSleepSpeed(opts.RestSpeed)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	spots := StandardSpots(physics.HalfLength, opts.DRadius)
	match := NewMatchState(opts.RulesMode, opts.Layout)

	g := &Game{
		opts:    opts,
		world:   world,
		reg:     NewRegistry(world, opts.Material, physics.BallRadius),
		match:   match,
		referee: NewReferee(match, opts.FoulPenalty),
		ctrl: NewShotController(spots.DZone(), PowerCurve{
			MinDistance: opts.MinPowerDistance,
			MaxDistance: opts.MaxPowerDistance,
			MaxPower:    opts.MaxPower,
		}),
		rack: RackSpec{
			Spots:        spots,
			HalfLength:   physics.HalfLength,
			HalfWidth:    physics.HalfWidth,
			BallRadius:   physics.BallRadius,
			RandomReds:   opts.RandomReds,
			PracticeReds: opts.PracticeReds,
		},
		rng:    rand.New(rand.NewSource(seed)),
		notify: opts.Notifier,
		dt:     opts.TickDuration(),
	}
	g.resetRack(opts.Layout)
	return g, nil
}

// SetNotifier replaces the event sink.
func (g *Game) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	g.notify = n
}

// TickDuration is the simulated time per tick.
func (g *Game) TickDuration() time.Duration {
	return g.dt
}

// Now is the game clock.
func (g *Game) Now() time.Duration {
	return g.sched.Now()
}

// Match returns a copy of the scoreboard.
func (g *Game) Match() MatchState {
	return *g.match
}

func (g *Game) Phase() ShotPhase {
	return g.ctrl.Phase()
}

// Balls returns every ball on the table.
func (g *Game) Balls() []BallState {
	return g.reg.States()
}

// ShotInFlight reports whether a fired shot is still waiting for rest.
func (g *Game) ShotInFlight() bool {
	return g.referee.InFlight()
}

// Tick advances the game by one simulation step: deferred effects, physics,
// pot accrual, out-of-bounds sweep, recording, rest resolution and render.
func (g *Game) Tick() {
	g.tick++
	g.sched.Advance(g.dt)

	for _, c := range bindContacts(g.reg, g.world, g.world.Step()) {
		if pc, ok := c.(PocketContact); ok {
			g.pot(pc)
		}
	}

	for _, b := range g.reg.SweepOutOfBounds(g.opts.OutOfBoundsRadius) {
		log.Printf("[TABLE] ball %d (%s) left the table, removed", b.ID, b.Color)
		g.notify.Notify(BallRemoved{Ball: b.ID, Color: b.Color, Reason: "out_of_bounds"})
		if b.IsCue() {
			g.scheduleRespawn()
		}
	}

	if g.recorder.Recording() {
		g.recorder.Capture(g.samples())
	}

	if g.referee.InFlight() && g.atRest() {
		g.recorder.Stop()
		g.resolve()
	}

	g.render()
}

// Advance runs as many ticks as fit in d and returns how many ran.
func (g *Game) Advance(d time.Duration) int {
	n := int(d / g.dt)
	for i := 0; i < n; i++ {
		g.Tick()
	}
	return n
}

// atRest is true when the cue ball is on the table, no respawn is pending
// and every ball is below the rest speed.
func (g *Game) atRest() bool {
	if _, ok := g.reg.Cue(); !ok {
		return false
	}
	if g.sched.Pending(TaskRespawn) {
		return false
	}
	return g.reg.AllBelow(g.opts.RestSpeed)
}

func (g *Game) pot(pc PocketContact) {
	b, ok := g.reg.RemoveByBody(pc.Ball.Body)
	if !ok {
		return
	}
	g.referee.Pot(b.Color)
	g.notify.Notify(BallRemoved{Ball: b.ID, Color: b.Color, Pocket: pc.Pocket, Reason: "potted"})
	if b.IsCue() {
		g.scheduleRespawn()
	}
}

func (g *Game) scheduleRespawn() {
	if g.sched.Pending(TaskRespawn) {
		return
	}
	g.sched.After(g.opts.RespawnDelay, TaskRespawn, g.respawnCue)
}

func (g *Game) respawnCue() {
	if _, ok := g.reg.Cue(); ok {
		return
	}
	g.reg.Add(White, g.freeSpot(g.rack.Spots.Kitchen))
	g.notify.Notify(g.matchUpdate())
}

// freeSpot returns the first point at or near want, inside the D, that no
// ball occupies.
func (g *Game) freeSpot(want physics.Vec2) physics.Vec2 {
	clear := 2*physics.BallRadius + rackGap
	dz := g.ctrl.DZone()
	step := clear
	for i := 0; i < 12; i++ {
		off := float64((i+1)/2) * step
		if i%2 == 1 {
			off = -off
		}
		p := want.Add(physics.V(0, off))
		if i > 0 && !dz.Contains(p) {
			continue
		}
		if !g.occupied(p, clear) {
			return p
		}
	}
	return want
}

func (g *Game) occupied(p physics.Vec2, clear float64) bool {
	for _, b := range g.reg.Balls() {
		pos, ok := g.reg.Position(b)
		if ok && pos.Dist(p) < clear {
			return true
		}
	}
	return false
}

func (g *Game) resolve() {
	_, hasCue := g.reg.Cue()
	cleared := hasCue && g.reg.Len() == 1

	v, ok := g.referee.Resolve(cleared)
	if !ok {
		return
	}

	if v.Outcome == OutcomeFoul && g.opts.ManualRespawn {
		g.ctrl.RequirePlacement()
	} else {
		g.ctrl.Ready()
	}

	g.syncUI()
	g.notify.Notify(ShotResolved{Verdict: v})
	g.notify.Notify(g.matchUpdate())

	if v.TurnChanged && !v.FrameComplete {
		text := fmt.Sprintf("Player %d to play", v.NextPlayer)
		if v.Outcome == OutcomeFoul {
			text = "Foul! " + text
		}
		next := v.NextPlayer
		g.sched.After(g.opts.AnnounceDelay, TaskAnnounce, func() {
			g.notify.Notify(Announcement{Text: text, Player: next})
		})
	}

	if v.FrameComplete {
		m := g.match
		log.Printf("[TABLE] frame %d complete scores=%v winner=%d", m.FramesCompleted, m.Scores, v.FrameWinner)
		g.notify.Notify(FrameComplete{
			Frame:        m.FramesCompleted,
			Winner:       v.FrameWinner,
			Scores:       m.Scores,
			HighestBreak: m.FrameHighestBreak,
			Shots:        m.TotalShots,
			Layout:       m.Layout,
			RulesMode:    m.RulesMode,
		})
		layout := m.Layout
		g.sched.After(g.opts.RackDelay, TaskRerack, func() {
			g.resetRack(layout)
		})
	}
}

// ErrTableBusy refuses a manual rack while a shot, replay or automatic
// rerack is under way.
var ErrTableBusy = errors.New("table is busy")

// ResetRack clears the table and racks a new frame on layout.
func (g *Game) ResetRack(layout LayoutMode) error {
	if _, err := ParseLayoutMode(string(layout)); err != nil {
		return err
	}
	if g.inputBlocked() || g.referee.InFlight() {
		return ErrTableBusy
	}
	g.resetRack(layout)
	return nil
}

func (g *Game) resetRack(layout LayoutMode) {
	g.reg.Clear()
	g.referee.ResetFrame(layout)
	g.recorder.Stop()
	g.reg.Add(White, g.rack.Spots.Kitchen)
	for _, p := range g.rack.Layout(layout, g.rng) {
		g.reg.Add(p.Color, p.Position)
	}
	g.ctrl.RequirePlacement()
	g.syncUI()
	log.Printf("[TABLE] racked %s with %d balls", layout, g.reg.Len())
	g.notify.Notify(g.matchUpdate())
}

// inputBlocked is true while a frame restart is pending or a replay runs.
func (g *Game) inputBlocked() bool {
	return g.sched.Pending(TaskRerack) || g.recorder.Replaying()
}

// StartAim begins aiming towards pointer.
func (g *Game) StartAim(pointer physics.Vec2) bool {
	if g.inputBlocked() || g.referee.InFlight() {
		return false
	}
	cue, ok := g.reg.Cue()
	if !ok {
		return false
	}
	pos, ok := g.reg.Position(cue)
	if !ok {
		return false
	}
	return g.ctrl.StartAim(pos, pointer)
}

// MoveAim follows the pointer while aiming.
func (g *Game) MoveAim(pointer physics.Vec2) bool {
	cue, ok := g.reg.Cue()
	if !ok {
		return false
	}
	pos, ok := g.reg.Position(cue)
	if !ok {
		return false
	}
	return g.ctrl.MoveAim(pos, pointer)
}

// Release fires the aimed shot. It returns false when nothing was fired.
func (g *Game) Release() bool {
	shot, ok := g.ctrl.Release()
	if !ok {
		return false
	}
	cue, ok := g.reg.Cue()
	if !ok || !g.world.ApplyImpulse(cue.Body, shot.Impulse) {
		g.ctrl.Ready()
		return false
	}

	g.referee.BeginShot()
	g.recorder.Start()
	g.notify.Notify(ShotFired{Number: g.match.TotalShots, Shooter: g.match.Active, Shot: shot})
	g.notify.Notify(g.matchUpdate())
	return true
}

// PlaceCueBall moves the cue ball to p if p is inside the D.
func (g *Game) PlaceCueBall(p physics.Vec2) bool {
	if g.inputBlocked() {
		return false
	}
	cue, ok := g.reg.Cue()
	if !ok {
		return false
	}
	if g.occupiedExcept(p, cue) {
		return false
	}
	if !g.ctrl.Place(p) {
		return false
	}
	g.reg.RemoveByBody(cue.Body)
	g.reg.Add(White, p)
	return true
}

func (g *Game) occupiedExcept(p physics.Vec2, skip *Ball) bool {
	clear := 2 * physics.BallRadius
	for _, b := range g.reg.Balls() {
		if b == skip {
			continue
		}
		pos, ok := g.reg.Position(b)
		if ok && pos.Dist(p) < clear {
			return true
		}
	}
	return false
}

// SetUIActive marks player p's pointer as over a UI surface. Only the
// active player's focus blocks shot input.
func (g *Game) SetUIActive(p Player, active bool) {
	if p != Player1 && p != Player2 {
		return
	}
	g.uiFocus[p.index()] = active
	g.syncUI()
}

func (g *Game) syncUI() {
	g.ctrl.SetUIActive(g.uiFocus[g.match.Active.index()])
}

// RequestReplay starts replaying the last shot. A refusal is reported to
// observers as Feedback and returned.
func (g *Game) RequestReplay() error {
	if err := g.recorder.StartReplay(g.referee.InFlight()); err != nil {
		g.notify.Notify(Feedback{Message: err.Error()})
		return err
	}
	return nil
}

// SetRulesMode switches between STANDARD and BEGINNER.
func (g *Game) SetRulesMode(mode RulesMode) error {
	if _, err := ParseRulesMode(string(mode)); err != nil {
		return err
	}
	g.referee.SetRulesMode(mode)
	g.notify.Notify(g.matchUpdate())
	return nil
}

// Snapshot returns the current state of the table.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Tick:           g.tick,
		Match:          *g.match,
		Phase:          g.ctrl.Phase(),
		Balls:          g.reg.States(),
		Aim:            g.aim(),
		DZone:          g.ctrl.DZone(),
		Replaying:      g.recorder.Replaying(),
		RespawnPending: g.sched.Pending(TaskRespawn),
		RerackPending:  g.sched.Pending(TaskRerack),
	}
}

func (g *Game) aim() *AimState {
	if g.ctrl.Phase() != PhaseAiming {
		return nil
	}
	angle, power := g.ctrl.Aim()
	return &AimState{Angle: angle, Power: power}
}

func (g *Game) matchUpdate() MatchUpdate {
	return MatchUpdate{Match: *g.match, Phase: g.ctrl.Phase()}
}

func (g *Game) samples() []Sample {
	out := make([]Sample, 0, g.reg.Len())
	for _, b := range g.reg.Balls() {
		if pos, ok := g.reg.Position(b); ok {
			out = append(out, Sample{Position: pos, Color: b.Color})
		}
	}
	return out
}

func (g *Game) render() {
	if g.recorder.Replaying() {
		frame, ok := g.recorder.Next()
		if ok {
			g.notify.Notify(RenderFrame{Tick: g.tick, Replay: true, Marks: frame})
			return
		}
	}
	g.notify.Notify(RenderFrame{Tick: g.tick, Balls: g.reg.States(), Aim: g.aim()})
}

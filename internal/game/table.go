package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/snooker/internal/metrics"
	"github.com/playmatatu/snooker/internal/snooker"
	"github.com/playmatatu/snooker/internal/store"
)

// Seat is one of the two player positions at a table.
type Seat struct {
	Name  string `json:"name"`
	Taken bool   `json:"taken"`
}

// TableInfo is the public description of a table.
type TableInfo struct {
	Token     string    `json:"token"`
	Private   bool      `json:"private"`
	HotSeat   bool      `json:"hot_seat"`
	Seats     [2]Seat   `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}

// Table runs one game. Every access to the game goes through the table
// mutex, which makes the tick loop and player input a single writer.
type Table struct {
	Token     string
	Private   bool
	HotSeat   bool
	CreatedAt time.Time

	mu             sync.Mutex
	game           *snooker.Game
	seats          [2]Seat
	passcodeHash   []byte
	lastActivity   time.Time
	broadcastEvery uint64
	dirty          bool

	out     *publisher
	history *historyWriter

	cancel context.CancelFunc
	done   chan struct{}
}

// Do runs fn with exclusive access to the game.
func (t *Table) Do(fn func(g *snooker.Game)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.game)
}

// Snapshot returns the current game state.
func (t *Table) Snapshot() snooker.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Snapshot()
}

// Info describes the table and its seats.
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TableInfo{
		Token:     t.Token,
		Private:   t.Private,
		HotSeat:   t.HotSeat,
		Seats:     t.seats,
		CreatedAt: t.CreatedAt,
	}
}

// LastActivity is the time of the last accepted player input.
func (t *Table) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// Act runs a player's input against the game. With needTurn set the
// claims must hold the active player's seat.
func (t *Table) Act(claims SeatClaims, needTurn bool, fn func(g *snooker.Game) error) error {
	if claims.Table != t.Token {
		return ErrInvalidToken
	}
	if !claims.Seated() {
		return ErrSpectator
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if needTurn && !claims.Controls(t.game.Match().Active) {
		return ErrNotYourTurn
	}
	t.lastActivity = time.Now()
	return fn(t.game)
}

// Run ticks the game until ctx is cancelled.
func (t *Table) Run(ctx context.Context) {
	defer close(t.done)

	var every time.Duration
	t.Do(func(g *snooker.Game) { every = g.TickDuration() })
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[TABLE] Table %s stopped", t.Token)
			return
		case <-ticker.C:
			t.step()
		}
	}
}

// step runs one tick and queues a snapshot when the scoreboard changed.
func (t *Table) step() {
	start := time.Now()
	t.mu.Lock()
	t.game.Tick()
	var snap *snooker.Snapshot
	if t.dirty {
		s := t.game.Snapshot()
		snap = &s
		t.dirty = false
	}
	t.mu.Unlock()
	metrics.TickDuration.Observe(time.Since(start).Seconds())

	if snap != nil && t.out != nil {
		t.out.enqueue(outbound{token: t.Token, snapshot: snap})
	}
}

// stop cancels the tick loop and waits for it to exit.
func (t *Table) stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
}

// Notify receives game events with the table lock held.
func (t *Table) Notify(e snooker.Event) {
	switch ev := e.(type) {
	case snooker.RenderFrame:
		if !ev.Replay && t.broadcastEvery > 1 && ev.Tick%t.broadcastEvery != 0 {
			return
		}
	case snooker.MatchUpdate:
		t.dirty = true
	case snooker.ShotFired:
		metrics.ShotsTotal.Inc()
	case snooker.ShotResolved:
		v := ev.Verdict
		metrics.ShotOutcomes.WithLabelValues(string(v.Outcome)).Inc()
		t.history.saveShot(store.ShotRecord{
			TableToken: t.Token,
			FrameNo:    v.Frame,
			ShotNo:     v.Shot,
			Shooter:    int(v.Shooter),
			Outcome:    string(v.Outcome),
			Potted:     v.Potted,
			Penalty:    v.Penalty,
			BreakAfter: v.Break,
		})
	case snooker.FrameComplete:
		metrics.FramesTotal.Inc()
		t.history.saveFrame(store.FrameRecord{
			TableToken:    t.Token,
			FrameNo:       ev.Frame,
			Layout:        string(ev.Layout),
			RulesMode:     string(ev.RulesMode),
			Player1:       t.seats[0].Name,
			Player2:       t.seats[1].Name,
			Score1:        ev.Scores[0],
			Score2:        ev.Scores[1],
			Winner:        int(ev.Winner),
			HighestBreak1: ev.HighestBreak[0],
			HighestBreak2: ev.HighestBreak[1],
			Shots:         ev.Shots,
		})
	}

	if t.out != nil {
		t.out.enqueue(outbound{token: t.Token, event: e})
	}
}

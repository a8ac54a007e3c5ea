package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/snooker"
	"github.com/playmatatu/snooker/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		SeatTokenHours:      1,
		TableIdleMinutes:    30,
		MaxTables:           10,
		BroadcastEveryTicks: 2,
	}
}

func newTestManager(t *testing.T, cfg *config.Config, hub Broadcaster, hist History) *TableManager {
	t.Helper()
	m := NewTableManager(cfg, config.DefaultTableConfig(), nil, hub, hist)
	m.startLoops = false
	t.Cleanup(m.Shutdown)
	return m
}

type fakeHub struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func (h *fakeHub) BroadcastRaw(token string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sent == nil {
		h.sent = make(map[string][][]byte)
	}
	h.sent[token] = append(h.sent[token], data)
}

type fakeHistory struct {
	frames []store.FrameRecord
	shots  []store.ShotRecord
	err    error
}

func (h *fakeHistory) SaveFrame(ctx context.Context, f store.FrameRecord) error {
	h.frames = append(h.frames, f)
	return h.err
}

func (h *fakeHistory) SaveShot(ctx context.Context, s store.ShotRecord) error {
	h.shots = append(h.shots, s)
	return h.err
}

func TestCreateTableRacksAndSeats(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)

	table, grant, err := m.CreateTable(CreateTableOptions{Player1: "Ann", Layout: snooker.LayoutPractice, Seed: 3})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if grant.Table != table.Token || len(grant.Seats) != 1 || grant.Seats[0] != snooker.Player1 {
		t.Errorf("unexpected grant %+v", grant)
	}

	snap := table.Snapshot()
	if len(snap.Balls) != 6 {
		t.Errorf("expected cue ball plus 5 reds, got %d balls", len(snap.Balls))
	}
	if snap.Match.Layout != snooker.LayoutPractice {
		t.Errorf("expected PRACTICE layout, got %s", snap.Match.Layout)
	}

	info := table.Info()
	if info.Seats[0].Name != "Ann" || !info.Seats[0].Taken {
		t.Errorf("expected Ann in seat 1, got %+v", info.Seats[0])
	}
	if info.Seats[1].Taken {
		t.Error("seat 2 should be open")
	}
	if m.GetActiveTableCount() != 1 {
		t.Errorf("expected 1 table, got %d", m.GetActiveTableCount())
	}
}

func TestCreateTableRejectsUnknownMode(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	if _, _, err := m.CreateTable(CreateTableOptions{RulesMode: "EASY"}); err == nil {
		t.Error("expected an error for an unknown rules mode")
	}
	if m.GetActiveTableCount() != 0 {
		t.Errorf("failed table should not be registered")
	}
}

func TestMaxTables(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTables = 1
	m := newTestManager(t, cfg, nil, nil)

	if _, _, err := m.CreateTable(CreateTableOptions{}); err != nil {
		t.Fatalf("first table: %v", err)
	}
	if _, _, err := m.CreateTable(CreateTableOptions{}); !errors.Is(err, ErrTooManyTables) {
		t.Errorf("expected ErrTooManyTables, got %v", err)
	}
}

func TestSeatTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	_, grant, err := m.CreateTable(CreateTableOptions{HotSeat: true})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	claims, err := m.VerifySeatToken(grant.Token)
	if err != nil {
		t.Fatalf("VerifySeatToken failed: %v", err)
	}
	if claims.Table != grant.Table {
		t.Errorf("expected table %s, got %s", grant.Table, claims.Table)
	}
	if !claims.Controls(snooker.Player1) || !claims.Controls(snooker.Player2) {
		t.Errorf("hot seat token should control both players, got %v", claims.Seats)
	}

	cfg := testConfig()
	cfg.JWTSecret = "other-secret"
	other := newTestManager(t, cfg, nil, nil)
	if _, err := other.VerifySeatToken(grant.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for a foreign secret, got %v", err)
	}
	if _, err := m.VerifySeatToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestExpiredSeatToken(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	m.seatTTL = -time.Minute

	signed, _, err := m.issueSeatToken("abc", []snooker.Player{snooker.Player1})
	if err != nil {
		t.Fatalf("issueSeatToken failed: %v", err)
	}
	if _, err := m.VerifySeatToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestJoinTable(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	table, _, err := m.CreateTable(CreateTableOptions{Player1: "Ann", Passcode: "1234"})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if !table.Private {
		t.Error("table with a passcode should be private")
	}

	if _, err := m.JoinTable(table.Token, "Bob", "0000"); !errors.Is(err, ErrBadPasscode) {
		t.Errorf("expected ErrBadPasscode, got %v", err)
	}

	grant, err := m.JoinTable(table.Token, "Bob", "1234")
	if err != nil {
		t.Fatalf("JoinTable failed: %v", err)
	}
	if len(grant.Seats) != 1 || grant.Seats[0] != snooker.Player2 {
		t.Errorf("expected seat 2, got %v", grant.Seats)
	}
	if got := table.Info().Seats[1]; got.Name != "Bob" || !got.Taken {
		t.Errorf("expected Bob in seat 2, got %+v", got)
	}

	if _, err := m.JoinTable(table.Token, "Cy", "1234"); !errors.Is(err, ErrTableFull) {
		t.Errorf("expected ErrTableFull, got %v", err)
	}
	if _, err := m.JoinTable("missing", "Cy", ""); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
}

func TestJoinHotSeatTable(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	table, _, err := m.CreateTable(CreateTableOptions{HotSeat: true})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if _, err := m.JoinTable(table.Token, "Bob", ""); !errors.Is(err, ErrTableFull) {
		t.Errorf("expected ErrTableFull for a hot seat table, got %v", err)
	}
}

func TestActEnforcesSeats(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	table, _, err := m.CreateTable(CreateTableOptions{})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	noop := func(g *snooker.Game) error { return nil }
	p1 := SeatClaims{Table: table.Token, Seats: []snooker.Player{snooker.Player1}}
	p2 := SeatClaims{Table: table.Token, Seats: []snooker.Player{snooker.Player2}}

	tests := []struct {
		name     string
		claims   SeatClaims
		needTurn bool
		want     error
	}{
		{"active player", p1, true, nil},
		{"waiting player", p2, true, ErrNotYourTurn},
		{"waiting player without turn check", p2, false, nil},
		{"spectator", SeatClaims{Table: table.Token}, false, ErrSpectator},
		{"other table", SeatClaims{Table: "other", Seats: p1.Seats}, false, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := table.Act(tt.claims, tt.needTurn, noop); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStepAdvancesGame(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	table, _, err := m.CreateTable(CreateTableOptions{})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	before := table.Snapshot().Tick
	table.step()
	table.step()
	if got := table.Snapshot().Tick; got != before+2 {
		t.Errorf("expected tick %d, got %d", before+2, got)
	}
	if table.dirty {
		t.Error("step should clear the dirty flag after taking a snapshot")
	}
}

func TestNotifyThrottlesLiveFrames(t *testing.T) {
	table := &Table{Token: "t1", broadcastEvery: 2, out: newPublisher(nil, nil, 16)}

	table.Notify(snooker.RenderFrame{Tick: 1})
	if len(table.out.ch) != 0 {
		t.Errorf("odd tick should be dropped, queue has %d", len(table.out.ch))
	}
	table.Notify(snooker.RenderFrame{Tick: 2})
	table.Notify(snooker.RenderFrame{Tick: 3, Replay: true})
	if len(table.out.ch) != 2 {
		t.Errorf("expected even tick and replay frame queued, got %d", len(table.out.ch))
	}

	table.Notify(snooker.MatchUpdate{})
	if !table.dirty {
		t.Error("match update should mark the table dirty")
	}
}

func TestPublisherDeliversLocally(t *testing.T) {
	hub := &fakeHub{}
	p := newPublisher(nil, hub, 4)

	p.deliver(context.Background(), outbound{token: "t1", event: snooker.Feedback{Message: "no replay"}})
	p.deliver(context.Background(), outbound{token: "t1", snapshot: &snooker.Snapshot{}})

	if len(hub.sent["t1"]) != 1 {
		t.Fatalf("expected 1 message, got %d", len(hub.sent["t1"]))
	}
	var msg struct {
		Type  string `json:"type"`
		Table string `json:"table"`
		Data  struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(hub.sent["t1"][0], &msg); err != nil {
		t.Fatalf("bad message: %v", err)
	}
	if msg.Type != "feedback" || msg.Table != "t1" || msg.Data.Message != "no replay" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestPublisherQueueDoesNotBlock(t *testing.T) {
	p := newPublisher(nil, nil, 1)
	if !p.enqueue(outbound{token: "a"}) {
		t.Fatal("first enqueue should succeed")
	}
	if p.enqueue(outbound{token: "b"}) {
		t.Error("enqueue on a full queue should report a drop")
	}
}

func TestHistoryRecordsShotsAndFrames(t *testing.T) {
	hist := &fakeHistory{}
	w := newHistoryWriter(hist, 8)
	table := &Table{Token: "t1", history: w}
	table.seats[0] = Seat{Name: "Ann", Taken: true}
	table.seats[1] = Seat{Name: "Bob", Taken: true}

	table.Notify(snooker.ShotResolved{Verdict: snooker.Verdict{
		Frame: 1, Shot: 4, Shooter: snooker.Player2, Outcome: snooker.OutcomeGoodPot, Potted: 1, Break: 3,
	}})
	table.Notify(snooker.FrameComplete{
		Frame: 1, Winner: snooker.Player2, Scores: [2]int{2, 9}, HighestBreak: [2]int{1, 5},
		Shots: 4, Layout: snooker.LayoutTriangle, RulesMode: snooker.RulesStandard,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.run(ctx)

	if len(hist.shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(hist.shots))
	}
	shot := hist.shots[0]
	if shot.TableToken != "t1" || shot.ShotNo != 4 || shot.Shooter != 2 || shot.Outcome != "GOOD_POT" || shot.BreakAfter != 3 {
		t.Errorf("unexpected shot record %+v", shot)
	}

	if len(hist.frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(hist.frames))
	}
	frame := hist.frames[0]
	if frame.Player1 != "Ann" || frame.Player2 != "Bob" || frame.Winner != 2 || frame.Score2 != 9 || frame.HighestBreak2 != 5 {
		t.Errorf("unexpected frame record %+v", frame)
	}
}

func TestHistoryWriterDisabled(t *testing.T) {
	w := newHistoryWriter(nil, 8)
	if w != nil {
		t.Fatal("expected nil writer without a history")
	}
	w.saveShot(store.ShotRecord{})
	w.saveFrame(store.FrameRecord{})
	w.run(context.Background())
}

func TestReapIdleTables(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	idle, _, err := m.CreateTable(CreateTableOptions{})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	busy, _, err := m.CreateTable(CreateTableOptions{})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	now := time.Now()
	idle.mu.Lock()
	idle.lastActivity = now.Add(-time.Hour)
	idle.mu.Unlock()

	if n := m.reapIdle(now); n != 1 {
		t.Errorf("expected 1 table reaped, got %d", n)
	}
	if _, err := m.GetTable(idle.Token); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("idle table should be gone, got %v", err)
	}
	if _, err := m.GetTable(busy.Token); err != nil {
		t.Errorf("busy table should remain: %v", err)
	}
}

func TestSavedStateWithoutRedis(t *testing.T) {
	m := newTestManager(t, testConfig(), nil, nil)
	if _, err := m.SavedState(context.Background(), "abc"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
}

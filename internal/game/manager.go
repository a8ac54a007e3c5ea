package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/metrics"
	"github.com/playmatatu/snooker/internal/physics"
	"github.com/playmatatu/snooker/internal/snooker"
)

// TableManager owns every open table.
type TableManager struct {
	tables         map[string]*Table
	rdb            *redis.Client
	options        snooker.Options
	secret         []byte
	seatTTL        time.Duration
	idleAfter      time.Duration
	maxTables      int
	broadcastEvery int
	startLoops     bool

	out     *publisher
	history *historyWriter

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// CreateTableOptions are the choices made when opening a table.
type CreateTableOptions struct {
	Player1   string
	Player2   string
	HotSeat   bool
	Passcode  string
	RulesMode snooker.RulesMode
	Layout    snooker.LayoutMode
	Seed      int64
}

// SeatGrant is a signed seat token handed to a player.
type SeatGrant struct {
	Table     string           `json:"table"`
	Seats     []snooker.Player `json:"seats"`
	Token     string           `json:"seat_token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// NewTableManager creates a manager. rdb, hub and hist may be nil.
func NewTableManager(cfg *config.Config, tableCfg config.TableConfig, rdb *redis.Client, hub Broadcaster, hist History) *TableManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &TableManager{
		tables:         make(map[string]*Table),
		rdb:            rdb,
		options:        tableCfg.Options(),
		secret:         []byte(cfg.JWTSecret),
		seatTTL:        time.Duration(cfg.SeatTokenHours) * time.Hour,
		idleAfter:      time.Duration(cfg.TableIdleMinutes) * time.Minute,
		maxTables:      cfg.MaxTables,
		broadcastEvery: cfg.BroadcastEveryTicks,
		startLoops:     true,
		out:            newPublisher(rdb, hub, 4096),
		history:        newHistoryWriter(hist, 1024),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start runs the publisher, history writer and idle reaper until Shutdown.
func (m *TableManager) Start() {
	go m.out.run(m.ctx)
	go m.history.run(m.ctx)
	go m.StartReaper(m.ctx, time.Minute)
	log.Printf("[TABLE] Table manager started (max_tables=%d idle_after=%s)", m.maxTables, m.idleAfter)
}

// Shutdown stops every table and the background workers.
func (m *TableManager) Shutdown() {
	m.mu.Lock()
	tables := make([]*Table, 0, len(m.tables))
	for token, t := range m.tables {
		tables = append(tables, t)
		delete(m.tables, token)
	}
	m.mu.Unlock()

	for _, t := range tables {
		t.stop()
		metrics.ActiveTables.Dec()
	}
	m.cancel()
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateTable opens a table with a fresh rack and seats the creator.
func (m *TableManager) CreateTable(opts CreateTableOptions) (*Table, SeatGrant, error) {
	gameOpts := m.options
	if opts.RulesMode != "" {
		gameOpts.RulesMode = opts.RulesMode
	}
	if opts.Layout != "" {
		gameOpts.Layout = opts.Layout
	}
	gameOpts.Seed = opts.Seed

	var hash []byte
	if opts.Passcode != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(opts.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, SeatGrant{}, fmt.Errorf("hash passcode: %w", err)
		}
		hash = h
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxTables > 0 && len(m.tables) >= m.maxTables {
		return nil, SeatGrant{}, ErrTooManyTables
	}

	token := generateToken(8)
	for m.tables[token] != nil {
		token = generateToken(8)
	}

	now := time.Now()
	every := m.broadcastEvery
	if every < 1 {
		every = 1
	}
	t := &Table{
		Token:          token,
		Private:        hash != nil,
		HotSeat:        opts.HotSeat,
		CreatedAt:      now,
		passcodeHash:   hash,
		lastActivity:   now,
		broadcastEvery: uint64(every),
		out:            m.out,
		history:        m.history,
		done:           make(chan struct{}),
	}
	t.seats[0] = Seat{Name: nameOr(opts.Player1, "Player 1"), Taken: true}
	t.seats[1] = Seat{Name: nameOr(opts.Player2, "Player 2"), Taken: opts.HotSeat}

	gameOpts.Notifier = t
	g, err := snooker.NewGame(physics.NewWorld(physics.NewSnookerTable()), gameOpts)
	if err != nil {
		return nil, SeatGrant{}, err
	}
	t.game = g

	seats := []snooker.Player{snooker.Player1}
	if opts.HotSeat {
		seats = append(seats, snooker.Player2)
	}
	signed, exp, err := m.issueSeatToken(token, seats)
	if err != nil {
		return nil, SeatGrant{}, err
	}

	m.tables[token] = t
	if m.startLoops {
		ctx, cancel := context.WithCancel(m.ctx)
		t.cancel = cancel
		go t.Run(ctx)
	}
	metrics.ActiveTables.Inc()
	log.Printf("[TABLE] Created table %s (rules=%s layout=%s hot_seat=%v private=%v)",
		token, gameOpts.RulesMode, gameOpts.Layout, opts.HotSeat, t.Private)

	return t, SeatGrant{Table: token, Seats: seats, Token: signed, ExpiresAt: exp}, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// JoinTable claims the second seat of a table.
func (m *TableManager) JoinTable(token, name, passcode string) (SeatGrant, error) {
	t, err := m.GetTable(token)
	if err != nil {
		return SeatGrant{}, err
	}

	t.mu.Lock()
	if t.HotSeat || t.seats[1].Taken {
		t.mu.Unlock()
		return SeatGrant{}, ErrTableFull
	}
	if t.passcodeHash != nil {
		if err := bcrypt.CompareHashAndPassword(t.passcodeHash, []byte(passcode)); err != nil {
			t.mu.Unlock()
			return SeatGrant{}, ErrBadPasscode
		}
	}
	t.seats[1].Taken = true
	if name != "" {
		t.seats[1].Name = name
	}
	t.lastActivity = time.Now()
	t.mu.Unlock()

	seats := []snooker.Player{snooker.Player2}
	signed, exp, err := m.issueSeatToken(token, seats)
	if err != nil {
		return SeatGrant{}, err
	}
	log.Printf("[TABLE] Player %q joined table %s", name, token)
	return SeatGrant{Table: token, Seats: seats, Token: signed, ExpiresAt: exp}, nil
}

// GetTable returns an open table.
func (m *TableManager) GetTable(token string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tables[token]; ok {
		return t, nil
	}
	return nil, ErrTableNotFound
}

// RemoveTable stops and forgets a table.
func (m *TableManager) RemoveTable(token string) bool {
	m.mu.Lock()
	t, ok := m.tables[token]
	if ok {
		delete(m.tables, token)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	t.stop()
	metrics.ActiveTables.Dec()
	return true
}

// GetActiveTableCount returns the number of open tables.
func (m *TableManager) GetActiveTableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// SavedState reads the last snapshot kept in redis for a table that may
// no longer be open.
func (m *TableManager) SavedState(ctx context.Context, token string) ([]byte, error) {
	if m.rdb == nil {
		return nil, ErrTableNotFound
	}
	data, err := m.rdb.Get(ctx, SnapshotKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTableNotFound
	}
	return data, err
}

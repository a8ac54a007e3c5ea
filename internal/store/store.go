// Package store persists finished frames and resolved shots.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/snooker/internal/database"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store writes match history to Postgres or SQLite.
type Store struct {
	db     *sqlx.DB
	driver string
}

// FrameRecord is one completed frame.
type FrameRecord struct {
	ID            int64  `db:"id" json:"id"`
	TableToken    string `db:"table_token" json:"table_token"`
	FrameNo       int    `db:"frame_no" json:"frame_no"`
	Layout        string `db:"layout" json:"layout"`
	RulesMode     string `db:"rules_mode" json:"rules_mode"`
	Player1       string `db:"player1" json:"player1"`
	Player2       string `db:"player2" json:"player2"`
	Score1        int    `db:"score1" json:"score1"`
	Score2        int    `db:"score2" json:"score2"`
	Winner        int    `db:"winner" json:"winner"`
	HighestBreak1 int    `db:"highest_break1" json:"highest_break1"`
	HighestBreak2 int    `db:"highest_break2" json:"highest_break2"`
	Shots         int    `db:"shots" json:"shots"`
	CompletedAt   int64  `db:"completed_at" json:"completed_at"`
}

// ShotRecord is one resolved shot.
type ShotRecord struct {
	ID         int64  `db:"id" json:"id"`
	TableToken string `db:"table_token" json:"table_token"`
	FrameNo    int    `db:"frame_no" json:"frame_no"`
	ShotNo     int    `db:"shot_no" json:"shot_no"`
	Shooter    int    `db:"shooter" json:"shooter"`
	Outcome    string `db:"outcome" json:"outcome"`
	Potted     int    `db:"potted" json:"potted"`
	Penalty    int    `db:"penalty" json:"penalty"`
	BreakAfter int    `db:"break_after" json:"break_after"`
	CreatedAt  int64  `db:"created_at" json:"created_at"`
}

// Summary aggregates a table's history.
type Summary struct {
	FramesPlayed int `db:"frames_played" json:"frames_played"`
	HighestBreak int `db:"highest_break" json:"highest_break"`
	Shots        int `db:"shots" json:"shots"`
}

// Open connects with driver "postgres" or "sqlite". The Postgres schema is
// owned by migrations; SQLite creates its own.
func Open(driver, dsn string) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = database.Connect(dsn)
	case DriverSQLite:
		db, err = database.ConnectSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("store: cannot connect: %w", err)
	}
	return New(db, driver)
}

// New wraps an open connection.
func New(db *sqlx.DB, driver string) (*Store, error) {
	s := &Store{db: db, driver: driver}
	if driver == DriverSQLite {
		if err := s.migrate(); err != nil {
			return nil, fmt.Errorf("store: migration failed: %w", err)
		}
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_token TEXT NOT NULL,
			frame_no INTEGER NOT NULL,
			layout TEXT NOT NULL,
			rules_mode TEXT NOT NULL,
			player1 TEXT NOT NULL DEFAULT '',
			player2 TEXT NOT NULL DEFAULT '',
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0,
			highest_break1 INTEGER NOT NULL DEFAULT 0,
			highest_break2 INTEGER NOT NULL DEFAULT 0,
			shots INTEGER NOT NULL DEFAULT 0,
			completed_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_frames_table ON frames(table_token, completed_at DESC);

		CREATE TABLE IF NOT EXISTS shots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_token TEXT NOT NULL,
			frame_no INTEGER NOT NULL,
			shot_no INTEGER NOT NULL,
			shooter INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			potted INTEGER NOT NULL DEFAULT 0,
			penalty INTEGER NOT NULL DEFAULT 0,
			break_after INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_shots_table ON shots(table_token, frame_no);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFrame records a completed frame. A zero CompletedAt is set to now.
func (s *Store) SaveFrame(ctx context.Context, f FrameRecord) error {
	if f.CompletedAt == 0 {
		f.CompletedAt = time.Now().Unix()
	}
	query := s.db.Rebind(`INSERT INTO frames
		(table_token, frame_no, layout, rules_mode, player1, player2, score1, score2, winner,
		 highest_break1, highest_break2, shots, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		f.TableToken, f.FrameNo, f.Layout, f.RulesMode, f.Player1, f.Player2, f.Score1, f.Score2, f.Winner,
		f.HighestBreak1, f.HighestBreak2, f.Shots, f.CompletedAt)
	if err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}

// SaveShot records a resolved shot. A zero CreatedAt is set to now.
func (s *Store) SaveShot(ctx context.Context, r ShotRecord) error {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	query := s.db.Rebind(`INSERT INTO shots
		(table_token, frame_no, shot_no, shooter, outcome, potted, penalty, break_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		r.TableToken, r.FrameNo, r.ShotNo, r.Shooter, r.Outcome, r.Potted, r.Penalty, r.BreakAfter, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save shot: %w", err)
	}
	return nil
}

// RecentFrames returns up to limit frames of a table, newest first.
func (s *Store) RecentFrames(ctx context.Context, tableToken string, limit int) ([]FrameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	frames := []FrameRecord{}
	query := s.db.Rebind(`SELECT id, table_token, frame_no, layout, rules_mode, player1, player2, score1, score2,
		winner, highest_break1, highest_break2, shots, completed_at
		FROM frames WHERE table_token = ? ORDER BY completed_at DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &frames, query, tableToken, limit); err != nil {
		return nil, fmt.Errorf("recent frames: %w", err)
	}
	return frames, nil
}

// TableSummary returns frames played, best break and shot count for a table.
func (s *Store) TableSummary(ctx context.Context, tableToken string) (Summary, error) {
	var sum Summary
	query := s.db.Rebind(`SELECT COUNT(*) AS frames_played,
		COALESCE(MAX(CASE WHEN highest_break1 > highest_break2 THEN highest_break1 ELSE highest_break2 END), 0) AS highest_break
		FROM frames WHERE table_token = ?`)
	row := s.db.QueryRowxContext(ctx, query, tableToken)
	if err := row.Scan(&sum.FramesPlayed, &sum.HighestBreak); err != nil {
		return sum, fmt.Errorf("table summary: %w", err)
	}
	if err := s.db.GetContext(ctx, &sum.Shots, s.db.Rebind(`SELECT COUNT(*) FROM shots WHERE table_token = ?`), tableToken); err != nil {
		return sum, fmt.Errorf("table summary shots: %w", err)
	}
	return sum, nil
}

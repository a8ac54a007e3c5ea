package models

import (
	"time"

	"github.com/playmatatu/snooker/internal/store"
)

// CreateTableRequest opens a table.
type CreateTableRequest struct {
	Player1   string `json:"player1" binding:"max=32"`
	Player2   string `json:"player2" binding:"max=32"`
	HotSeat   bool   `json:"hot_seat"`
	Passcode  string `json:"passcode" binding:"max=64"`
	RulesMode string `json:"rules_mode" binding:"omitempty,oneof=STANDARD BEGINNER"`
	Layout    string `json:"layout" binding:"omitempty,oneof=TRIANGLE RANDOM PRACTICE"`
	Seed      int64  `json:"seed"`
}

// JoinTableRequest claims the open seat of a table.
type JoinTableRequest struct {
	Name     string `json:"name" binding:"max=32"`
	Passcode string `json:"passcode"`
}

// SeatResponse carries a seat token and where to connect with it.
type SeatResponse struct {
	Table        string    `json:"table"`
	Seats        []int     `json:"seats"`
	SeatToken    string    `json:"seat_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	WebSocketURL string    `json:"ws_url"`
}

// FramesResponse lists a table's recorded frames.
type FramesResponse struct {
	Table   string              `json:"table"`
	Frames  []store.FrameRecord `json:"frames"`
	Summary store.Summary       `json:"summary"`
}

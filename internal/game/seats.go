package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/playmatatu/snooker/internal/snooker"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableFull     = errors.New("table is full")
	ErrTooManyTables = errors.New("too many tables open")
	ErrBadPasscode   = errors.New("wrong passcode")
	ErrInvalidToken  = errors.New("invalid seat token")
	ErrSpectator     = errors.New("spectators cannot play")
	ErrNotYourTurn   = errors.New("not your turn")
)

// SeatClaims is what a verified seat token grants.
type SeatClaims struct {
	Table     string
	Seats     []snooker.Player
	ExpiresAt time.Time
}

// Controls reports whether the claims hold player p's seat.
func (s SeatClaims) Controls(p snooker.Player) bool {
	for _, seat := range s.Seats {
		if seat == p {
			return true
		}
	}
	return false
}

// Seated reports whether the claims hold any seat.
func (s SeatClaims) Seated() bool {
	return len(s.Seats) > 0
}

// issueSeatToken signs an HS256 token for the given seats of a table.
func (m *TableManager) issueSeatToken(table string, seats []snooker.Player) (string, time.Time, error) {
	exp := time.Now().Add(m.seatTTL)
	ids := make([]int, len(seats))
	for i, s := range seats {
		ids[i] = int(s)
	}
	custom := jwt.MapClaims{"table": table, "seats": ids, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign seat token: %w", err)
	}
	return signed, exp, nil
}

// VerifySeatToken checks a seat token's signature and expiry.
func (m *TableManager) VerifySeatToken(token string) (SeatClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return SeatClaims{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return SeatClaims{}, ErrInvalidToken
	}

	table, _ := claims["table"].(string)
	rawSeats, _ := claims["seats"].([]interface{})
	expf, _ := claims["exp"].(float64)
	if table == "" || len(rawSeats) == 0 {
		return SeatClaims{}, ErrInvalidToken
	}

	out := SeatClaims{Table: table, ExpiresAt: time.Unix(int64(expf), 0)}
	for _, r := range rawSeats {
		f, ok := r.(float64)
		if !ok || (snooker.Player(f) != snooker.Player1 && snooker.Player(f) != snooker.Player2) {
			return SeatClaims{}, ErrInvalidToken
		}
		out.Seats = append(out.Seats, snooker.Player(f))
	}
	return out, nil
}

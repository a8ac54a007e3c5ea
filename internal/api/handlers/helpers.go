package handlers

import (
	"fmt"

	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
)

// seatResponse converts a seat grant for the API.
func seatResponse(grant game.SeatGrant) models.SeatResponse {
	seats := make([]int, len(grant.Seats))
	for i, s := range grant.Seats {
		seats[i] = int(s)
	}
	return models.SeatResponse{
		Table:        grant.Table,
		Seats:        seats,
		SeatToken:    grant.Token,
		ExpiresAt:    grant.ExpiresAt,
		WebSocketURL: fmt.Sprintf("/api/v1/tables/%s/ws?pt=%s", grant.Table, grant.Token),
	}
}

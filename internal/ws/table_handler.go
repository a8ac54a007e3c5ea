package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/metrics"
	"github.com/playmatatu/snooker/internal/physics"
	"github.com/playmatatu/snooker/internal/snooker"
)

// PointData is a table coordinate sent with aim and placement messages.
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FocusData reports whether a menu or overlay has the player's attention.
type FocusData struct {
	Active bool `json:"active"`
}

// RulesData selects the rules mode.
type RulesData struct {
	Mode string `json:"mode"`
}

// RackData selects the layout for a fresh rack.
type RackData struct {
	Layout string `json:"layout"`
}

// session binds a client to the table it plays on.
type session struct {
	client  *Client
	manager *game.TableManager
}

// HandleWebSocket upgrades a connection to a table. The pt query parameter
// carries a seat token; without one the connection spectates.
func HandleWebSocket(manager *game.TableManager, hub *Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		seatToken := c.Query("pt")

		table, err := manager.GetTable(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}

		claims := game.SeatClaims{Table: token}
		if seatToken != "" {
			claims, err = manager.VerifySeatToken(seatToken)
			if err != nil || claims.Table != token {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid seat token"})
				return
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:     hub,
			conn:    conn,
			table:   token,
			claims:  claims,
			send:    make(chan []byte, 256),
			limiter: rate.NewLimiter(rate.Limit(cfg.WSMessagesPerSecond), cfg.WSMessageBurst),
		}

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":  "connected",
			"table": table.Info(),
			"seats": claims.Seats,
		})
		client.queue(welcome)
		if state, err := game.EncodeState(token, table.Snapshot()); err == nil {
			client.queue(state)
		}

		hub.register <- client

		s := &session{client: client, manager: manager}
		go client.writePump()
		go s.readPump()
	}
}

// readPump reads client messages until the connection drops.
func (s *session) readPump() {
	c := s.client
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close at table %s: %v", c.table, err)
			}
			break
		}

		if !c.limiter.Allow() {
			metrics.WSRejected.WithLabelValues("rate_limited").Inc()
			c.sendError("Too many messages")
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			metrics.WSRejected.WithLabelValues("malformed").Inc()
			c.sendError("Invalid message")
			continue
		}

		s.handleMessage(msg)
	}
}

// handleMessage routes one client message to the table.
func (s *session) handleMessage(msg WSMessage) {
	c := s.client
	table, err := s.manager.GetTable(c.table)
	if err != nil {
		c.sendError("Table not found")
		return
	}

	switch msg.Type {
	case "start_aim", "aim":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid aim data")
			return
		}
		start := msg.Type == "start_aim"
		s.act(table, true, func(g *snooker.Game) error {
			p := physics.V(data.X, data.Y)
			if start && !g.StartAim(p) {
				return errors.New("Cannot aim now")
			}
			if !start {
				g.MoveAim(p)
			}
			return nil
		})

	case "release":
		s.act(table, true, func(g *snooker.Game) error {
			g.Release()
			return nil
		})

	case "place_cue_ball":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid placement data")
			return
		}
		s.act(table, true, func(g *snooker.Game) error {
			if !g.PlaceCueBall(physics.V(data.X, data.Y)) {
				return errors.New("Cue ball cannot be placed there")
			}
			return nil
		})

	case "ui_focus":
		var data FocusData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid focus data")
			return
		}
		s.act(table, false, func(g *snooker.Game) error {
			g.SetUIActive(focusSeat(c.claims, g.Match().Active), data.Active)
			return nil
		})

	case "replay":
		// a refused replay is reported through the table's feedback event
		s.act(table, false, func(g *snooker.Game) error {
			g.RequestReplay()
			return nil
		})

	case "set_rules_mode":
		var data RulesData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid rules data")
			return
		}
		mode, err := snooker.ParseRulesMode(data.Mode)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		s.act(table, false, func(g *snooker.Game) error {
			return g.SetRulesMode(mode)
		})

	case "reset_rack":
		var data RackData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid rack data")
			return
		}
		layout, err := snooker.ParseLayoutMode(data.Layout)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		s.act(table, true, func(g *snooker.Game) error {
			return g.ResetRack(layout)
		})

	case "get_state":
		state, err := game.EncodeState(c.table, table.Snapshot())
		if err != nil {
			c.sendError("State unavailable")
			return
		}
		c.queue(state)

	default:
		metrics.WSRejected.WithLabelValues("unknown_type").Inc()
		c.sendError("Unknown message type")
	}
}

// focusSeat is the seat a client's UI focus applies to: the active seat when
// the client holds it, otherwise the client's own seat.
func focusSeat(claims game.SeatClaims, active snooker.Player) snooker.Player {
	if claims.Controls(active) {
		return active
	}
	return claims.Seats[0]
}

// act runs fn on the table and reports refusals to the client.
func (s *session) act(table *game.Table, needTurn bool, fn func(g *snooker.Game) error) {
	err := table.Act(s.client.claims, needTurn, fn)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrNotYourTurn):
		s.client.sendError("Not your turn")
	case errors.Is(err, game.ErrSpectator):
		s.client.sendError("Spectators cannot play")
	default:
		s.client.sendError(err.Error())
	}
}

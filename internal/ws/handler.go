package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client is one websocket connection watching a table.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	table   string
	claims  game.SeatClaims
	send    chan []byte
	limiter *rate.Limiter
}

// Hub maintains the set of connections per table.
type Hub struct {
	rooms      map[string]map[*Client]bool // table token -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.add(client)
			log.Printf("[WS] Client joined table %s (seats=%v)", client.table, client.claims.Seats)
		case client := <-h.unregister:
			if h.remove(client) {
				log.Printf("[WS] Client left table %s", client.table)
			}
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.table]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.table] = room
	}
	room[client] = true
	metrics.WSConnectionsActive.Inc()
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.table]
	if !ok || !room[client] {
		return false
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.table)
	}
	close(client.send)
	metrics.WSConnectionsActive.Dec()
	return true
}

// BroadcastRaw sends an encoded message to every client at a table.
func (h *Hub) BroadcastRaw(table string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[table] {
		select {
		case client.send <- data:
			metrics.WSMessagesTotal.Inc()
		default:
			// Client's buffer is full
			metrics.WSRejected.WithLabelValues("send_buffer_full").Inc()
			log.Printf("[WS] Send buffer full for client at table %s, dropping message", table)
		}
	}
}

// BroadcastToTable marshals message and sends it to a table.
func (h *Hub) BroadcastToTable(table string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	h.BroadcastRaw(table, data)
}

// RoomSize returns the number of clients watching a table.
func (h *Hub) RoomSize(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[table])
}

// WSMessage is a message from a client.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error at table %s: %v", c.table, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error at table %s: %v", c.table, err)
				return
			}
		}
	}
}

// queue sends data to this client only.
func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped direct message at table %s (buffer full)", c.table)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	c.queue(data)
}

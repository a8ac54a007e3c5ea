package game

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/snooker/internal/snooker"
)

// TableEventsChannel carries table messages between server instances.
const TableEventsChannel = "table_events"

// SnapshotTTL is how long the last table state stays readable in redis.
const SnapshotTTL = time.Hour

// Broadcaster delivers an encoded message to everyone watching a table.
type Broadcaster interface {
	BroadcastRaw(token string, data []byte)
}

// Message is the wire form of a table notification.
type Message struct {
	Type  string      `json:"type"`
	Table string      `json:"table"`
	Data  interface{} `json:"data,omitempty"`
}

// Envelope is what goes over TableEventsChannel.
type Envelope struct {
	Table   string          `json:"table"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent renders a table event as a websocket message.
func EncodeEvent(token string, e snooker.Event) ([]byte, error) {
	return json.Marshal(Message{Type: e.Type(), Table: token, Data: e})
}

// EncodeState renders a snapshot as a table_state message.
func EncodeState(token string, s snooker.Snapshot) ([]byte, error) {
	return json.Marshal(Message{Type: "table_state", Table: token, Data: s})
}

// SnapshotKey is the redis key holding a table's last state.
func SnapshotKey(token string) string {
	return "table:" + token + ":state"
}

type outbound struct {
	token    string
	event    snooker.Event
	snapshot *snooker.Snapshot
}

// publisher moves table output off the tick path. Events go to redis
// pub/sub when configured and straight to the local hub otherwise.
type publisher struct {
	ch    chan outbound
	rdb   *redis.Client
	local Broadcaster
}

func newPublisher(rdb *redis.Client, local Broadcaster, size int) *publisher {
	return &publisher{ch: make(chan outbound, size), rdb: rdb, local: local}
}

// enqueue never blocks; output is dropped when the queue is full.
func (p *publisher) enqueue(o outbound) bool {
	select {
	case p.ch <- o:
		return true
	default:
		return false
	}
}

func (p *publisher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-p.ch:
			p.deliver(ctx, o)
		}
	}
}

func (p *publisher) deliver(ctx context.Context, o outbound) {
	if o.snapshot != nil {
		p.saveSnapshot(ctx, o.token, *o.snapshot)
		return
	}

	data, err := EncodeEvent(o.token, o.event)
	if err != nil {
		log.Printf("[TABLE] Error marshaling %s for table %s: %v", o.event.Type(), o.token, err)
		return
	}

	if p.rdb != nil {
		env, _ := json.Marshal(Envelope{Table: o.token, Payload: data})
		err := p.rdb.Publish(ctx, TableEventsChannel, env).Err()
		if err == nil {
			return
		}
		log.Printf("[REDIS] publish failed for table %s, delivering locally: %v", o.token, err)
	}
	if p.local != nil {
		p.local.BroadcastRaw(o.token, data)
	}
}

func (p *publisher) saveSnapshot(ctx context.Context, token string, s snooker.Snapshot) {
	if p.rdb == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("[REDIS] Error marshaling snapshot for table %s: %v", token, err)
		return
	}
	if err := p.rdb.SetEx(ctx, SnapshotKey(token), data, SnapshotTTL).Err(); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for table %s: %v", token, err)
	}
}

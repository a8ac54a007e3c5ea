package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/snooker/internal/game"
)

// StartTableEventSubscriber relays table messages published by any server
// instance to the clients connected here.
func StartTableEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; table event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.TableEventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		log.Printf("[WS] %s subscriber started", game.TableEventsChannel)
		for msg := range ch {
			relay(hub, msg.Payload)
		}
		log.Printf("[WS] %s subscriber stopped", game.TableEventsChannel)
	}()
}

// relay forwards one envelope to its table's room.
func relay(hub *Hub, payload string) bool {
	var env game.Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Printf("[WS] invalid table event payload: %v", err)
		return false
	}
	if env.Table == "" || len(env.Payload) == 0 {
		log.Printf("[WS] table event without table or payload")
		return false
	}
	hub.BroadcastRaw(env.Table, env.Payload)
	return true
}

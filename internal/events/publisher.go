// Package events fans committed domain events out to connected clients.
// Delivery is best-effort and observational only: a publish failure never
// affects the ledger mutation that produced the event.
package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Channel is the Redis pub/sub channel carrying all domain events.
const Channel = "profitspro:events"

// Publisher is called by the ledger and workflow services after each
// committed mutation. Implementations must not block ledger operations.
type Publisher interface {
	Publish(event string, payload any)
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RedisPublisher publishes JSON envelopes on a Redis channel.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(event string, payload any) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		logrus.Errorf("[EVENTS] Failed to encode %s event: %v", event, err)
		return
	}

	if err := p.rdb.Publish(context.Background(), Channel, data).Err(); err != nil {
		logrus.Warnf("[EVENTS] Failed to publish %s event: %v", event, err)
	}
}

// NopPublisher discards all events. Used when Redis is unavailable and in
// tests that do not assert on notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(string, any) {}

// New returns a Redis-backed publisher, or a nop publisher when no client
// is available.
func New(rdb *redis.Client) Publisher {
	if rdb == nil {
		return NopPublisher{}
	}
	return NewRedisPublisher(rdb)
}

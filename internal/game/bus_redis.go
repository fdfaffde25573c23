package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus relays session events over Redis Pub/Sub. Nothing is stored:
// events published while nobody listens are gone.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) channel(sessionID string) string {
	return fmt.Sprintf("session:%s:events", sessionID)
}

func (b *RedisBus) Publish(ctx context.Context, sessionID string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel(sessionID), data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, sessionID string) (<-chan Envelope, func(), error) {
	ps := b.rdb.Subscribe(ctx, b.channel(sessionID))
	// wait for the subscription to be confirmed so no event is lost after return
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Envelope, subscriberBuffer)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				select {
				case out <- env:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	return out, cancel, nil
}

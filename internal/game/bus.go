package game

import (
	"context"
	"sync"
)

// Bus fans session events out to whoever is watching the session
// (WebSocket connections, possibly on other instances).
type Bus interface {
	Publish(ctx context.Context, sessionID string, env Envelope) error
	// Subscribe returns a channel of events for sessionID and a cancel func
	// that must be called to release it. The channel is closed after cancel.
	Subscribe(ctx context.Context, sessionID string) (<-chan Envelope, func(), error)
}

const subscriberBuffer = 64

type MemoryBus struct {
	mu   sync.Mutex
	subs map[string]map[chan Envelope]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[chan Envelope]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, sessionID string, env Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[sessionID] {
		select {
		case ch <- env:
		default:
			// slow reader: drop
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, sessionID string) (<-chan Envelope, func(), error) {
	ch := make(chan Envelope, subscriberBuffer)

	b.mu.Lock()
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[chan Envelope]struct{})
		b.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

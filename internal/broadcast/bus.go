// internal/broadcast/bus.go
package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Subscriber is one connection's membership in a room's fan-out. Messages
// arrive pre-marshaled on C; a subscriber that falls behind has messages
// dropped rather than blocking the publisher (it can always request a fresh
// snapshot to resync).
type Subscriber struct {
	UserID uuid.UUID
	ch     chan []byte
}

// C is the stream of outbound wire messages for this subscriber.
func (s *Subscriber) C() <-chan []byte { return s.ch }

// Send delivers a message to this subscriber only, with the same
// drop-when-full policy as room-wide publishes. Sending to an
// unsubscribed subscriber panics, so callers must stop sending before
// they call Unsubscribe.
func (s *Subscriber) Send(data []byte) {
	select {
	case s.ch <- data:
	default:
		log.Printf("broadcast: dropped direct message for slow subscriber %s", s.UserID)
	}
}

// Bus fans events out to every connection subscribed to a room. Publishing is
// fire-and-forget best-effort; delivery failures never affect room state.
type Bus struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewBus() *Bus {
	return &Bus{rooms: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a connection for a room's events.
func (b *Bus) Subscribe(roomID string, userID uuid.UUID) *Subscriber {
	sub := &Subscriber{UserID: userID, ch: make(chan []byte, 32)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rooms[roomID] == nil {
		b.rooms[roomID] = make(map[*Subscriber]struct{})
	}
	b.rooms[roomID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the connection from fan-out and closes its channel.
// It only ever affects delivery; in-flight room operations and room timers
// are untouched by a departing connection.
func (b *Bus) Unsubscribe(roomID string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.rooms[roomID]; ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			close(sub.ch)
		}
		if len(subs) == 0 {
			delete(b.rooms, roomID)
		}
	}
}

// Publish marshals message once and hands it to every subscriber of the room.
func (b *Bus) Publish(roomID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("broadcast: failed to marshal message for room %s: %v", roomID, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.rooms[roomID] {
		select {
		case sub.ch <- data:
		default:
			log.Printf("broadcast: dropped message for slow subscriber %s in room %s", sub.UserID, roomID)
		}
	}
}

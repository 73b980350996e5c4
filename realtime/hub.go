// Package realtime fans booking events out to websocket subscribers. It is
// the concrete Notifier handed to BookingService; delivery is best-effort
// and never blocks a request handler.
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"hotel-reservation/services"
)

type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Client]struct{})}
}

// Publish implements services.Notifier. A channel with no subscribers is not
// an error; events for absent listeners are simply dropped.
func (h *Hub) Publish(channel string, event services.Event) error {
	payload, err := json.Marshal(struct {
		Channel string `json:"channel"`
		services.Event
	}{Channel: channel, Event: event})
	if err != nil {
		return err
	}

	h.mu.RLock()
	subscribers := make([]*Client, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	for _, c := range subscribers {
		select {
		case c.send <- payload:
		case <-c.done:
		default:
			// Slow consumer; drop it rather than stall the publisher.
			log.Printf("⚠️ dropping slow websocket client %s on %s", c.id, channel)
			h.remove(c)
			c.close()
		}
	}
	return nil
}

func (h *Hub) add(c *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range channels {
		if h.channels[name] == nil {
			h.channels[name] = make(map[*Client]struct{})
		}
		h.channels[name][c] = struct{}{}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, subs := range h.channels {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, name)
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

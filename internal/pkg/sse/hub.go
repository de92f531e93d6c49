package sse

import (
	"sync"
)

// AdminsChannel receives every attendance event, employees listen on their own ID.
const AdminsChannel = "admins"

// Event is a single server-sent event.
type Event struct {
	Channel string
	Type    string
	Data    interface{}
}

// Hub fans events out to the subscribers of a channel
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a listener on channel and returns its event stream and an unsubscribe func.
func (h *Hub) Subscribe(channel string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan Event]struct{})
	}
	h.subscribers[channel][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[channel], ch)
			close(ch)
			if len(h.subscribers[channel]) == 0 {
				delete(h.subscribers, channel)
			}
		})
	}
	return ch, cleanup
}

// Publish delivers event to every subscriber of channel. Slow subscribers drop events.
func (h *Hub) Publish(channel string, eventType string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := Event{Channel: channel, Type: eventType, Data: data}
	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishToMany sends the same event to several channels
func (h *Hub) PublishToMany(channels []string, eventType string, data interface{}) {
	for _, channel := range channels {
		h.Publish(channel, eventType, data)
	}
}

func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

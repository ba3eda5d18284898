// Package session carries session-change notifications from the identity
// provider to whoever subscribed for the lifetime of the process.
package session

import (
	"log/slog"
	"sync"

	"github.com/msomdec/maallem/internal/domain"
)

// Listener receives session events. Listeners run on the hub's dispatch
// goroutine and must not block.
type Listener func(domain.SessionEvent)

// Hub fans session events out to subscribers. Publish never blocks; events
// published while the queue is full are dropped and logged.
type Hub struct {
	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int

	events    chan domain.SessionEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub and starts its dispatch goroutine. Call Close on
// shutdown to stop it.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	h := &Hub{
		listeners: make(map[int]Listener),
		events:    make(chan domain.SessionEvent, buffer),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go h.dispatch()
	return h
}

// Subscribe registers l and returns the function that removes it.
func (h *Hub) Subscribe(l Listener) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish queues evt for delivery. It is a no-op after Close.
func (h *Hub) Publish(evt domain.SessionEvent) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- evt:
	default:
		slog.Warn("session event dropped", "kind", evt.Kind, "user_id", evt.UserID)
	}
}

// Close stops dispatching and drops every subscriber. Events still queued
// are delivered before Close returns.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		<-h.stopped
	})
}

func (h *Hub) dispatch() {
	for {
		select {
		case evt := <-h.events:
			h.deliver(evt)
		case <-h.done:
			for {
				select {
				case evt := <-h.events:
					h.deliver(evt)
				default:
					h.mu.Lock()
					clear(h.listeners)
					h.mu.Unlock()
					close(h.stopped)
					return
				}
			}
		}
	}
}

// deliver calls listeners outside the lock so a listener may unsubscribe
// itself or subscribe others.
func (h *Hub) deliver(evt domain.SessionEvent) {
	h.mu.RLock()
	listeners := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.RUnlock()

	for _, l := range listeners {
		l(evt)
	}
}

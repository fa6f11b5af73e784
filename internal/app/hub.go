package app

import (
	"sync"

	"sprint-quiz-service/internal/domain"
)

// Hub fans leaderboard snapshots out to live subscribers, one channel set
// per event.
type Hub struct {
	mu     sync.Mutex
	boards map[string]map[chan domain.Leaderboard]struct{}
}

func NewHub() *Hub {
	return &Hub{boards: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a channel for eventID and primes it with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(eventID string, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	h.mu.Lock()
	subs, ok := h.boards[eventID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.boards[eventID] = subs
	}
	subs[ch] = struct{}{}
	// Sent under the lock so no Publish can overtake the initial snapshot.
	ch <- initial
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.boards[eventID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.boards, eventID)
		}
	}
	return ch, cancel
}

// Publish delivers lb to every subscriber of its event without blocking.
func (h *Hub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.boards[lb.EventID] {
		select {
		case ch <- lb:
		default:
			// Slow reader: replace its oldest snapshot with the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers reports how many channels listen on eventID.
func (h *Hub) Subscribers(eventID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.boards[eventID])
}

package core

import (
	"sync"

	"github.com/olyamironova/artist-exchange/internal/domain"
)

// terminalSet remembers the final state of the most recent filled or
// cancelled orders so cancels can tell "already terminal" from "unknown".
// The oldest entry is evicted once capacity is reached.
type terminalSet struct {
	mu       sync.Mutex
	capacity int
	orders   map[string]domain.Order
	ring     []string
	next     int
}

func newTerminalSet(capacity int) *terminalSet {
	return &terminalSet{
		capacity: capacity,
		orders:   make(map[string]domain.Order),
	}
}

func (s *terminalSet) add(o domain.Order) {
	if s.capacity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		s.orders[o.ID] = o
		return
	}
	if len(s.ring) < s.capacity {
		s.ring = append(s.ring, o.ID)
	} else {
		delete(s.orders, s.ring[s.next])
		s.ring[s.next] = o.ID
		s.next = (s.next + 1) % s.capacity
	}
	s.orders[o.ID] = o
}

func (s *terminalSet) get(orderID string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	return o, ok
}

package service

import (
	"sync"

	"github.com/qudalautt/hub/internal/core/domain"
)

// PendingStore holds the current snapshot of orders awaiting confirmation.
// Every mutation builds a fresh slice from the previous snapshot under the
// lock, so a stale async completion can never partially revert a newer state.
type PendingStore struct {
	mu     sync.Mutex
	orders []domain.PendingOrder
	gen    uint64 // generation of the last applied poll snapshot
}

func NewPendingStore() *PendingStore {
	return &PendingStore{}
}

// ApplySnapshot replaces the full snapshot with the given poll result. The
// stored item is preserved for ids already present. Snapshots whose generation
// is not newer than the last applied one are discarded; the return value
// reports whether the snapshot was applied.
func (s *PendingStore) ApplySnapshot(gen uint64, orders []domain.PendingOrder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.gen {
		return false
	}
	s.gen = gen

	known := make(map[int64]domain.PendingOrder, len(s.orders))
	for _, o := range s.orders {
		known[o.ID] = o
	}

	next := make([]domain.PendingOrder, 0, len(orders))
	for _, o := range orders {
		if existing, ok := known[o.ID]; ok {
			next = append(next, existing)
			continue
		}
		next = append(next, o)
	}
	s.orders = next
	return true
}

// InsertOne prepends a single order if it is not already present and reports
// whether it was inserted.
func (s *PendingStore) InsertOne(o domain.PendingOrder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.ID == o.ID {
			return false
		}
	}

	next := make([]domain.PendingOrder, 0, len(s.orders)+1)
	next = append(next, o)
	next = append(next, s.orders...)
	s.orders = next
	return true
}

// Remove deletes an order by id. Removing an absent id is a no-op; the return
// value reports whether anything was removed.
func (s *PendingStore) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.PendingOrder, 0, len(s.orders))
	removed := false
	for _, o := range s.orders {
		if o.ID == id {
			removed = true
			continue
		}
		next = append(next, o)
	}
	s.orders = next
	return removed
}

// Get returns the order with the given id, if present.
func (s *PendingStore) Get(id int64) (domain.PendingOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.PendingOrder{}, false
}

// List returns a copy of the current snapshot in display order.
func (s *PendingStore) List() []domain.PendingOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PendingOrder, len(s.orders))
	copy(out, s.orders)
	return out
}

// Count is the unread count shown on the bell.
func (s *PendingStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

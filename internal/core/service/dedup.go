package service

import "sync"

// Deduplicator is the single authority deciding whether an order id has already
// been alerted on this session. The seen set only grows; it is never consulted
// for store membership.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[int64]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[int64]struct{})}
}

// CheckAndMark returns true only the first time an id is passed in. The check
// and the insertion happen under one lock, so two observers racing on the same
// id cannot both win.
func (d *Deduplicator) CheckAndMark(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

// Seen reports whether an id has been marked without marking it.
func (d *Deduplicator) Seen(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[id]
	return ok
}

func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

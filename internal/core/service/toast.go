package service

import (
	"sync"
	"time"

	"github.com/qudalautt/hub/internal/clock"
	"github.com/qudalautt/hub/internal/core/domain"
)

const (
	// DefaultToastDuration is the lifetime of an ordinary toast.
	DefaultToastDuration = 3500 * time.Millisecond
	// OrderToastDuration is the longer lifetime used for new-order alerts.
	OrderToastDuration = 15 * time.Second
)

// ToastOptions control toast lifetime. A zero Duration means the default.
type ToastOptions struct {
	Stay     bool
	Duration time.Duration
}

// ToastQueue is the session-local queue of ephemeral UI messages. Expiry and
// manual dismissal may race; removal of an absent id is a no-op.
type ToastQueue struct {
	mu     sync.Mutex
	clk    clock.Clock
	nextID int64
	toasts []domain.Toast
	timers map[int64]*time.Timer
	closed bool
}

func NewToastQueue(clk clock.Clock) *ToastQueue {
	return &ToastQueue{
		clk:    clk,
		timers: make(map[int64]*time.Timer),
	}
}

// Push appends a toast and, unless Stay is set, schedules its removal after the
// duration. Returns the session-local toast id.
func (q *ToastQueue) Push(message string, opts ToastOptions) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}

	d := opts.Duration
	if d <= 0 {
		d = DefaultToastDuration
	}

	q.nextID++
	id := q.nextID
	q.toasts = append(q.toasts, domain.Toast{
		ID:        id,
		Message:   message,
		CreatedAt: q.clk.Now(),
		Duration:  d,
		Stay:      opts.Stay,
	})

	if !opts.Stay {
		q.timers[id] = time.AfterFunc(d, func() {
			q.Dismiss(id)
		})
	}
	return id
}

// Dismiss removes a toast immediately. Dismissing an unknown or already
// expired id is a no-op.
func (q *ToastQueue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}

	next := q.toasts[:0]
	for _, t := range q.toasts {
		if t.ID != id {
			next = append(next, t)
		}
	}
	q.toasts = next
}

// List returns the live toasts in insertion order.
func (q *ToastQueue) List() []domain.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Stop cancels all pending expiry timers. Further pushes are ignored.
func (q *ToastQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

package domain

import "time"

// Toast is a short-lived UI notification. IDs are a session-local counter.
type Toast struct {
	ID        int64         `json:"id"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"-"`
	Stay      bool          `json:"stay"`
}

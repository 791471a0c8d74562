package audit

import (
	"context"
	"sync"

	"securekyc/internal/models"
)

// RingFeed keeps the latest events in memory.
type RingFeed struct {
	mu     sync.Mutex
	events []models.AuditEvent
	cap    int
}

// NewRingFeed returns a feed holding at most capacity events; non-positive
// values mean Capacity.
func NewRingFeed(capacity int) *RingFeed {
	if capacity <= 0 {
		capacity = Capacity
	}
	return &RingFeed{cap: capacity}
}

func (r *RingFeed) Emit(_ context.Context, evt models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append([]models.AuditEvent{evt}, r.events...)
	if len(r.events) > r.cap {
		r.events = r.events[:r.cap]
	}
	return nil
}

func (r *RingFeed) List(_ context.Context) ([]models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditEvent, len(r.events))
	copy(out, r.events)
	return out, nil
}

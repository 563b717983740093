package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"ecoroute/internal/models"

	"github.com/google/uuid"
)

const defaultEventCapacity = 1024

// EventRing is a bounded in-memory event log; the oldest entries are
// overwritten once capacity is reached.
type EventRing struct {
	mu     sync.RWMutex
	buf    []models.BinEvent
	next   int
	filled bool
}

func NewEventRing(capacity int) *EventRing {
	if capacity <= 0 {
		capacity = defaultEventCapacity
	}
	return &EventRing{buf: make([]models.BinEvent, capacity)}
}

// Append stores a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventRing) Append(ctx context.Context, e models.BinEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}
	e.Type = strings.ToUpper(strings.TrimSpace(e.Type))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.filled = true
	}
	return nil
}

// List returns the events matching q, oldest first.
func (r *EventRing) List(ctx context.Context, q EventQuery) ([]models.BinEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	typ := strings.ToUpper(strings.TrimSpace(q.Type))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.BinEvent, 0, 64)
	for _, ev := range r.ordered() {
		switch {
		case !q.From.IsZero() && ev.OccurredAt.Before(q.From),
			!q.To.IsZero() && ev.OccurredAt.After(q.To),
			typ != "" && ev.Type != typ,
			q.BinID != "" && ev.BinID != q.BinID:
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// ordered returns the live entries oldest first. Caller holds r.mu.
func (r *EventRing) ordered() []models.BinEvent {
	if !r.filled {
		return r.buf[:r.next]
	}
	out := make([]models.BinEvent, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

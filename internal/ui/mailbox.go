package ui

import (
	"context"
	"sync"

	"fauxbar/internal/engine"
)

// Mailbox is an engine.Observer that keeps only the latest snapshot. Observe
// never blocks, so the engine lock is never held across a UI round trip.
type Mailbox struct {
	mu     sync.Mutex
	latest engine.Snapshot
	dirty  bool
	notify chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Observe implements engine.Observer.
func (m *Mailbox) Observe(s engine.Snapshot) {
	m.mu.Lock()
	m.latest = s
	m.dirty = true
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Next blocks until a snapshot newer than the last one returned is available.
func (m *Mailbox) Next(ctx context.Context) (engine.Snapshot, bool) {
	for {
		m.mu.Lock()
		if m.dirty {
			m.dirty = false
			s := m.latest
			m.mu.Unlock()
			return s, true
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return engine.Snapshot{}, false
		case <-m.notify:
		}
	}
}

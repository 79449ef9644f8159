package tui

import (
	"sync"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
)

// Lease tracks whether one session has a game open. It is shared between
// the model and whoever owns the connection, so a game closed by the player
// and then by a dropped connection is released once.
type Lease struct {
	mu      sync.Mutex
	id      string
	pub     Publisher
	metrics *metrics.Metrics
	open    bool
}

// NewLease returns a closed lease. pub and m may be nil; an empty id
// disables publishing.
func NewLease(id string, pub Publisher, m *metrics.Metrics) *Lease {
	return &Lease{id: id, pub: pub, metrics: m}
}

// Acquire marks the game open.
func (l *Lease) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		return
	}
	l.open = true
	l.metrics.SessionStarted()
}

// Publish forwards snap while the game is open.
func (l *Lease) Publish(snap snake.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open && l.pub != nil && l.id != "" {
		l.pub.Publish(l.id, snap)
	}
}

// Release marks the game closed and withdraws it from spectators. It reports
// whether the game was open.
func (l *Lease) Release() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return false
	}
	l.open = false
	l.metrics.SessionEnded()
	if l.pub != nil && l.id != "" {
		l.pub.Remove(l.id)
	}
	return true
}

// Open reports whether the game is open.
func (l *Lease) Open() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

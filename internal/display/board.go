// Package display holds what the kiosk is currently showing.
package display

import (
	"sync"
	"time"

	"schedboard/internal/model"
)

// Surface is the sink the poll loop and the clock write to.
type Surface interface {
	// ShowContent replaces the board body with a freshly rendered layout.
	ShowContent(html string, items []model.Item)
	// ShowInterval updates the "Reloading every Ns" indicator.
	ShowInterval(d time.Duration)
	// ShowClock updates the live clock line.
	ShowClock(line string)
}

// Snapshot is a copy of the board state.
type Snapshot struct {
	HTML        string
	Items       []model.Item
	Interval    time.Duration
	Clock       string
	LastSuccess time.Time
	Version     uint64
}

// Board is the in-memory Surface served over HTTP. It is written by the poll
// loop and the clock and read by request handlers.
type Board struct {
	mu    sync.RWMutex
	state Snapshot
	now   func() time.Time
}

func NewBoard() *Board {
	return &Board{now: time.Now}
}

func (b *Board) ShowContent(html string, items []model.Item) {
	cp := make([]model.Item, len(items))
	copy(cp, items)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.HTML = html
	b.state.Items = cp
	b.state.LastSuccess = b.now()
	b.state.Version++
}

func (b *Board) ShowInterval(d time.Duration) {
	b.mu.Lock()
	b.state.Interval = d
	b.mu.Unlock()
}

func (b *Board) ShowClock(line string) {
	b.mu.Lock()
	b.state.Clock = line
	b.mu.Unlock()
}

// Snapshot returns the current state. Items is shared with the board but
// never mutated after ShowContent, so callers must treat it as read-only.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

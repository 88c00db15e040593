// Package view holds per-panel display state: one explicit mode per panel,
// the last good data, and a guard against applying results that arrive after
// a newer request started or after the panel was torn down.
package view

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Mode is the single display state of a panel.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeLoading Mode = "loading"
	ModeReady   Mode = "ready"
	ModeFailed  Mode = "failed"
)

// Ticket identifies one request cycle started with Begin.
type Ticket uint64

// Snapshot is a read-only copy of a panel's state.
type Snapshot[T any] struct {
	Mode      Mode       `json:"mode"`
	Data      T          `json:"data"`
	HasData   bool       `json:"hasData"`
	Message   string     `json:"message,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Panel is safe for concurrent use.
type Panel[T any] struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	describe func(error) string

	mode      Mode
	data      T
	hasData   bool
	message   string
	updatedAt time.Time
	current   Ticket
	closed    bool
}

// NewPanel creates an idle panel. describe turns a fetch error into the
// user-facing message; raw error text is never shown.
func NewPanel[T any](clock clockwork.Clock, describe func(error) string) *Panel[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Panel[T]{
		clock:    clock,
		describe: describe,
		mode:     ModeIdle,
	}
}

// Begin starts a new request cycle and supersedes any outstanding one.
func (p *Panel[T]) Begin() Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	if !p.closed {
		p.mode = ModeLoading
		p.message = ""
	}
	return p.current
}

// Resolve applies data if t is still the latest cycle and the panel is open.
func (p *Panel[T]) Resolve(t Ticket, data T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.acceptsLocked(t) {
		return false
	}
	p.mode = ModeReady
	p.data = data
	p.hasData = true
	p.message = ""
	p.updatedAt = p.clock.Now()
	return true
}

// Fail records a failure for cycle t. Previously displayed data is kept.
func (p *Panel[T]) Fail(t Ticket, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.acceptsLocked(t) {
		return false
	}
	p.mode = ModeFailed
	p.message = "Something went wrong."
	if p.describe != nil {
		p.message = p.describe(err)
	}
	return true
}

// Close tears the panel down; results arriving afterwards are dropped.
func (p *Panel[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Snapshot returns a copy of the current state.
func (p *Panel[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot[T]{
		Mode:    p.mode,
		Data:    p.data,
		HasData: p.hasData,
		Message: p.message,
	}
	if !p.updatedAt.IsZero() {
		ts := p.updatedAt
		s.UpdatedAt = &ts
	}
	return s
}

func (p *Panel[T]) acceptsLocked(t Ticket) bool {
	return !p.closed && t == p.current
}

package engine

import (
	"context"
	"fmt"

	"github.com/vedsharma/reqpad/internal/model"
)

// Entry pairs a request with its execution lifecycle
type Entry struct {
	Spec      *model.Http
	Lifecycle *Lifecycle
}

// Board is the ordered list of open requests. Like Lifecycle it belongs to the
// poll loop.
type Board struct {
	engine  *Engine
	entries []*Entry
	active  string
}

// NewBoard returns an empty board dispatching through e
func NewBoard(e *Engine) *Board {
	return &Board{engine: e}
}

// Insert puts spec at the top of the list and makes it active. Inserting a
// request that is already on the board only activates it.
func (b *Board) Insert(spec *model.Http) *Entry {
	if entry := b.Get(spec.ID()); entry != nil {
		b.active = spec.ID()
		return entry
	}
	entry := &Entry{Spec: spec, Lifecycle: NewLifecycle(b.engine)}
	b.entries = append([]*Entry{entry}, b.entries...)
	b.active = spec.ID()
	return entry
}

// Get finds a request by id
func (b *Board) Get(id string) *Entry {
	for _, entry := range b.entries {
		if entry.Spec.ID() == id {
			return entry
		}
	}
	return nil
}

// Entries returns the requests in display order
func (b *Board) Entries() []*Entry {
	return append([]*Entry(nil), b.entries...)
}

// Active returns the selected request, or nil
func (b *Board) Active() *Entry {
	return b.Get(b.active)
}

// Select makes the request with id active
func (b *Board) Select(id string) error {
	if b.Get(id) == nil {
		return fmt.Errorf("request not found: %s", id)
	}
	b.active = id
	return nil
}

// Remove drops a request, cancelling any send in flight
func (b *Board) Remove(id string) bool {
	for i, entry := range b.entries {
		if entry.Spec.ID() != id {
			continue
		}
		entry.Lifecycle.Cancel()
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		if b.active == id {
			b.active = ""
		}
		return true
	}
	return false
}

// Clear drops every request
func (b *Board) Clear() {
	for _, entry := range b.entries {
		entry.Lifecycle.Cancel()
	}
	b.entries = nil
	b.active = ""
}

// Send dispatches the request with id
func (b *Board) Send(ctx context.Context, id string) error {
	entry := b.Get(id)
	if entry == nil {
		return fmt.Errorf("request not found: %s", id)
	}
	return entry.Lifecycle.Send(ctx, entry.Spec)
}

// Tick polls every lifecycle once and returns the entries that completed
// during this tick
func (b *Board) Tick() []*Entry {
	var completed []*Entry
	for _, entry := range b.entries {
		if entry.Lifecycle.State() != Pending {
			continue
		}
		if entry.Lifecycle.Poll() == Completed {
			completed = append(completed, entry)
		}
	}
	return completed
}

// Package engine runs request specs off the interactive thread.
//
// Every dispatch gets its own goroutine. The goroutine fills a single result
// slot exactly once and then closes the handle's ready channel, so the poll
// side can check for completion without blocking and without extra locking.
package engine

import (
	"context"

	"github.com/vedsharma/reqpad/internal/model"
)

// Doer performs one blocking HTTP call
type Doer interface {
	Do(ctx context.Context, spec *model.Http) (*model.Response, error)
}

// Result is the outcome of an execution: a response or an error, never both
type Result struct {
	Response *model.Response
	Err      error
}

// OK reports whether the execution produced a response
func (r Result) OK() bool {
	return r.Err == nil && r.Response != nil
}

// Engine dispatches requests onto background goroutines
type Engine struct {
	client Doer
}

// New creates an engine that sends through client
func New(client Doer) *Engine {
	return &Engine{client: client}
}

// Handle tracks one dispatched request
type Handle struct {
	done   chan struct{}
	result Result
	cancel context.CancelFunc
}

// Dispatch starts sending a snapshot of spec and returns immediately.
// Later edits to spec do not affect the call in flight.
func (e *Engine) Dispatch(ctx context.Context, spec *model.Http) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{}), cancel: cancel}
	snapshot := spec.Clone()

	go func() {
		defer cancel()
		resp, err := e.client.Do(ctx, snapshot)
		if err != nil {
			resp = nil
		}
		h.result = Result{Response: resp, Err: err}
		close(h.done)
	}()
	return h
}

// resolved returns a handle that is already complete
func resolved(r Result) *Handle {
	h := &Handle{done: make(chan struct{}), result: r, cancel: func() {}}
	close(h.done)
	return h
}

// Poll returns the result if the call has finished. It never blocks.
func (h *Handle) Poll() (Result, bool) {
	select {
	case <-h.done:
		return h.result, true
	default:
		return Result{}, false
	}
}

// Done is closed once the result is available
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the call finishes or ctx is done
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel aborts the call in flight. The result slot is still written once the
// goroutine returns, but nobody is expected to read it.
func (h *Handle) Cancel() {
	h.cancel()
}

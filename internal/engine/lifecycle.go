package engine

import (
	"context"
	"errors"

	httpclient "github.com/vedsharma/reqpad/internal/http"
	"github.com/vedsharma/reqpad/internal/model"
)

// ErrPending is returned by Send while a previous send is still in flight
var ErrPending = errors.New("request already in flight")

// State of a request's execution
type State int

const (
	Idle State = iota
	Pending
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Lifecycle owns at most one execution for a single request.
//
// A Lifecycle belongs to the poll loop and is not safe for concurrent use; the
// only state shared with the worker is the handle's result slot.
type Lifecycle struct {
	engine *Engine
	state  State
	handle *Handle
	result Result
}

// NewLifecycle returns an idle lifecycle that dispatches through e
func NewLifecycle(e *Engine) *Lifecycle {
	return &Lifecycle{engine: e}
}

// State returns the current state without polling the handle
func (l *Lifecycle) State() State {
	return l.state
}

// Send dispatches spec. A completed result is acknowledged first. A URL that
// does not parse completes immediately with an error and nothing is sent.
func (l *Lifecycle) Send(ctx context.Context, spec *model.Http) error {
	switch l.state {
	case Pending:
		return ErrPending
	case Completed:
		l.Acknowledge()
	}

	if _, err := httpclient.ValidateURL(spec.URL); err != nil {
		l.handle = resolved(Result{Err: &httpclient.SendError{Kind: httpclient.ErrURL, Err: err}})
	} else {
		l.handle = l.engine.Dispatch(ctx, spec)
	}
	l.state = Pending
	l.Poll()
	return nil
}

// Poll moves a finished result into the lifecycle and drops the handle
func (l *Lifecycle) Poll() State {
	if l.state != Pending {
		return l.state
	}
	result, ok := l.handle.Poll()
	if !ok {
		return l.state
	}
	l.result = result
	l.handle = nil
	l.state = Completed
	return l.state
}

// Cancel abandons a pending send and returns to Idle. It reports whether
// anything was cancelled.
func (l *Lifecycle) Cancel() bool {
	if l.state != Pending {
		return false
	}
	l.handle.Cancel()
	l.handle = nil
	l.state = Idle
	return true
}

// Acknowledge clears a completed result
func (l *Lifecycle) Acknowledge() {
	if l.state != Completed {
		return
	}
	l.result = Result{}
	l.state = Idle
}

// Result returns the completed result, if any
func (l *Lifecycle) Result() (Result, bool) {
	if l.state != Completed {
		return Result{}, false
	}
	return l.result, true
}

// Done returns a channel closed when the pending send finishes. It is nil when
// nothing is pending.
func (l *Lifecycle) Done() <-chan struct{} {
	if l.state != Pending {
		return nil
	}
	return l.handle.Done()
}

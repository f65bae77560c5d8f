// Package fetch drives parameterized, cancellable data loading for a single
// logical view. Every parameter change supersedes the in-flight request; a
// generation token guarantees that only the most recently issued request can
// mutate visible state, even when the transport ignores cancellation.
package fetch

import (
	"context"
	"errors"
	"sync"

	"shopfront/internal/observability"
)

// State is the view loading lifecycle. Any state can transition back to
// StateLoading when parameters change.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Loader produces the result for one fully derived request descriptor.
type Loader[T any] func(ctx context.Context) (T, error)

// Machine is the per-view fetch state machine. At most one request is live
// at a time; dispatching cancels the predecessor and bumps the generation so
// a late response from it is provably discarded.
type Machine[T any] struct {
	mu       sync.Mutex
	view     string
	state    State
	result   T
	err      error
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
	onChange func()
}

// NewMachine creates an idle machine. view labels logs and metrics.
func NewMachine[T any](view string) *Machine[T] {
	return &Machine[T]{view: view}
}

// OnChange registers a callback invoked after every settled state change.
// It runs outside the machine lock.
func (m *Machine[T]) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Dispatch supersedes any in-flight request and runs load for the current
// parameters. The returned channel closes when this dispatch settles:
// applied, discarded as stale, or dropped on cancellation.
func (m *Machine[T]) Dispatch(ctx context.Context, load Loader[T]) <-chan struct{} {
	done := make(chan struct{})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(done)
		return done
	}
	m.gen++
	gen := m.gen
	if m.cancel != nil {
		m.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state = StateLoading
	m.err = nil
	m.mu.Unlock()

	observability.FetchDispatchesTotal.WithLabelValues(m.view).Inc()
	m.notify()

	go func() {
		defer close(done)
		result, err := load(runCtx)

		m.mu.Lock()
		if m.gen != gen {
			// Superseded while in flight: a newer request owns the state now.
			m.mu.Unlock()
			observability.FetchStaleDroppedTotal.WithLabelValues(m.view).Inc()
			return
		}
		if err != nil && errors.Is(err, context.Canceled) {
			// Cancellation is not an error; teardown mutates nothing.
			m.mu.Unlock()
			return
		}
		if err != nil {
			m.state = StateErrored
			m.err = err
			m.mu.Unlock()
			observability.FromContext(ctx).Warn("fetch failed",
				"view", m.view, "error", err.Error())
			m.notify()
			return
		}
		m.state = StateLoaded
		m.result = result
		m.mu.Unlock()
		m.notify()
	}()

	return done
}

// Reset cancels any in-flight request and returns the machine to StateIdle
// with no result and no error.
func (m *Machine[T]) Reset() {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	var zero T
	m.state = StateIdle
	m.result = zero
	m.err = nil
	m.mu.Unlock()
	m.notify()
}

// Close tears the machine down: the in-flight request is cancelled and no
// state mutation can happen afterward. Further dispatches are no-ops.
func (m *Machine[T]) Close() {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.closed = true
	m.mu.Unlock()
}

// Snapshot returns the current state, result, and error atomically.
func (m *Machine[T]) Snapshot() (State, T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.result, m.err
}

// State returns the current lifecycle state.
func (m *Machine[T]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Result returns the last applied result.
func (m *Machine[T]) Result() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Err returns the error captured by the last failed fetch, if any.
func (m *Machine[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Machine[T]) notify() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

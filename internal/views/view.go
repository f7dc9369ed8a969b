package views

import (
	"context"
	"sync"
)

// view carries what all controllers share: the dependencies, the lifetime context that cancels
// in-flight requests on unmount, and the single request slot.
//
// mu guards the controller state. It is never held while a request is in flight or while the
// Navigator, Notifier or Confirmer run.
type view struct {
	Deps

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	busy   bool
}

// mount starts a new lifetime, cancelling the previous one, and claims the request slot for the
// initial load. reset runs under the lock.
func (v *view) mount(parent context.Context, reset func()) context.Context {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.ctx, v.cancel = context.WithCancel(parent)
	v.busy = true
	reset()
	return v.ctx
}

// Unmount ends the lifetime of the view. Requests still in flight are cancelled and their
// results discarded.
func (v *view) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
}

// begin claims the request slot for a user action.
func (v *view) begin() (context.Context, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.beginLocked()
}

func (v *view) beginLocked() (context.Context, error) {
	switch {
	case v.ctx == nil:
		return nil, ErrNotMounted
	case v.ctx.Err() != nil:
		return nil, ErrUnmounted
	case v.busy:
		return nil, ErrBusy
	}
	v.busy = true
	return v.ctx, nil
}

// settleLocked releases the request slot after a request returned. It reports whether the
// result may still be applied, i.e. whether the view is still mounted. mu must be held.
func (v *view) settleLocked(ctx context.Context) bool {
	v.busy = false
	return ctx.Err() == nil
}

// release gives the request slot back without applying anything.
func (v *view) release() {
	v.mu.Lock()
	v.busy = false
	v.mu.Unlock()
}

// confirmDelete runs the confirmation gate shared by list and details.
func (v *view) confirmDelete() bool {
	if v.Confirmer == nil {
		return false
	}
	return v.Confirmer.Confirm("Are you sure you want to delete this person?")
}

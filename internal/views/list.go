package views

import (
	"context"

	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// List is the controller of the list view: loading → ready, or loading → error.
type List struct {
	view

	state   State
	persons []model.Person
	err     error
}

// ListSnapshot is a copy of the list state for rendering.
type ListSnapshot struct {
	State   State
	Persons []model.Person
	Err     error
}

// Empty reports the zero state: loaded, but without any person.
func (s ListSnapshot) Empty() bool {
	return s.State == StateReady && len(s.Persons) == 0
}

// NewList returns an unmounted list controller.
func NewList(deps Deps) *List {
	return &List{view: view{Deps: deps.withDefaults()}}
}

// Mount loads the full collection.
func (l *List) Mount(parent context.Context) error {
	ctx := l.mount(parent, func() {
		l.state = StateLoading
		l.persons = nil
		l.err = nil
	})
	return l.load(ctx)
}

// Snapshot returns the current state.
func (l *List) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	persons := make([]model.Person, len(l.persons))
	copy(persons, l.persons)
	return ListSnapshot{State: l.state, Persons: persons, Err: l.err}
}

// Reload fetches the full collection again.
func (l *List) Reload() error {
	ctx, err := l.begin()
	if err != nil {
		return err
	}
	return l.load(ctx)
}

// load fetches the collection. The caller holds the request slot; load releases it.
func (l *List) load(ctx context.Context) error {
	persons, err := l.Collection.ListAll(ctx)

	l.mu.Lock()
	if !l.settleLocked(ctx) {
		l.mu.Unlock()
		return ErrUnmounted
	}
	if err != nil {
		l.state = StateError
		l.err = err
		l.mu.Unlock()
		l.Logger.Error("failed to fetch persons", "error", err)
		l.Notifier.Error("Failed to load persons")
		return err
	}
	l.state = StateReady
	l.persons = persons
	l.err = nil
	l.mu.Unlock()
	return nil
}

// Delete removes a person after the user confirmed. On success the whole list is fetched
// again; nothing is removed locally. On failure the list stays as it is.
func (l *List) Delete(id int64) error {
	if !l.confirmDelete() {
		return ErrDeclined
	}
	ctx, err := l.begin()
	if err != nil {
		return err
	}

	err = l.Collection.Delete(ctx, id)
	if ctx.Err() != nil {
		l.release()
		return ErrUnmounted
	}
	if err != nil {
		l.release()
		l.Logger.Error("failed to delete person", "id", id, "error", err)
		l.Notifier.Error("Failed to delete person")
		return err
	}
	l.Notifier.Success("Person deleted successfully")
	return l.load(ctx)
}

package views

import (
	"context"

	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// Details is the controller of the details view: loading → ready, or loading → error.
type Details struct {
	view

	id     int64
	state  State
	person model.Person
	err    error
}

// DetailsSnapshot is a copy of the details state for rendering. Person is only meaningful in
// the ready state.
type DetailsSnapshot struct {
	State  State
	Id     int64
	Person model.Person
	Err    error
}

// NewDetails returns an unmounted details controller for the given person.
func NewDetails(deps Deps, id int64) *Details {
	return &Details{view: view{Deps: deps.withDefaults()}, id: id}
}

// Mount loads the person. If that fails the user is sent back to the list.
func (d *Details) Mount(parent context.Context) error {
	ctx := d.mount(parent, func() {
		d.state = StateLoading
		d.person = model.Person{}
		d.err = nil
	})

	person, err := d.Collection.GetByID(ctx, d.id)

	d.mu.Lock()
	if !d.settleLocked(ctx) {
		d.mu.Unlock()
		return ErrUnmounted
	}
	if err != nil {
		d.state = StateError
		d.err = err
		d.mu.Unlock()
		d.Logger.Error("failed to fetch person", "id", d.id, "error", err)
		d.Notifier.Error("Failed to load person details")
		d.Navigator.Navigate(ListRoute)
		return err
	}
	d.state = StateReady
	d.person = person
	d.mu.Unlock()
	return nil
}

// Snapshot returns the current state.
func (d *Details) Snapshot() DetailsSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DetailsSnapshot{State: d.state, Id: d.id, Person: d.person, Err: d.err}
}

// Edit switches to the form in edit mode.
func (d *Details) Edit() {
	d.Navigator.Navigate(EditRoute(d.id))
}

// Back switches to the list.
func (d *Details) Back() {
	d.Navigator.Navigate(ListRoute)
}

// Delete removes the person after the user confirmed and returns to the list.
func (d *Details) Delete() error {
	if !d.confirmDelete() {
		return ErrDeclined
	}
	ctx, err := d.begin()
	if err != nil {
		return err
	}

	err = d.Collection.Delete(ctx, d.id)
	d.release()
	if ctx.Err() != nil {
		return ErrUnmounted
	}
	if err != nil {
		d.Logger.Error("failed to delete person", "id", d.id, "error", err)
		d.Notifier.Error("Failed to delete person")
		return err
	}
	d.Notifier.Success("Person deleted successfully")
	d.Navigator.Navigate(ListRoute)
	return nil
}

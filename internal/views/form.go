package views

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/persons/pkg/client"
	"gitlab.com/dirk.krummacker/persons/pkg/validation"
)

// Mode tells whether a form creates a new person or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form is the controller of the create and edit form:
// loading (edit mode only) → editing → submitting → done, or → error.
//
// Every change revalidates all fields. Submit is refused while any rule is violated.
type Form struct {
	view

	mode    Mode
	id      int64
	state   State
	values  validation.FormValues
	touched map[string]bool
	errors  validation.FieldErrors
	err     error
}

// FormSnapshot is a copy of the form state for rendering.
type FormSnapshot struct {
	Mode   Mode
	Id     int64
	State  State
	Values validation.FormValues
	// Errors holds the violations of touched fields only, the way the form shows them.
	Errors validation.FieldErrors
	// Valid is true when no field, touched or not, violates a rule.
	Valid bool
	Err   error
}

// NewCreateForm returns an unmounted form that creates a person.
func NewCreateForm(deps Deps) *Form {
	return &Form{view: view{Deps: deps.withDefaults()}, mode: ModeCreate}
}

// NewEditForm returns an unmounted form that edits the given person.
func NewEditForm(deps Deps, id int64) *Form {
	return &Form{view: view{Deps: deps.withDefaults()}, mode: ModeEdit, id: id}
}

// Mount prepares the form. In create mode it starts with empty fields; in edit mode the fields
// are seeded from the stored person, and a failure to load it sends the user back to the list.
func (f *Form) Mount(parent context.Context) error {
	ctx := f.mount(parent, func() {
		f.values = validation.FormValues{}
		f.touched = map[string]bool{}
		f.err = nil
		if f.mode == ModeCreate {
			f.state = StateEditing
			f.busy = false
		} else {
			f.state = StateLoading
		}
		f.errors = validation.ValidateForm(f.values)
	})
	if f.mode == ModeCreate {
		return nil
	}

	person, err := f.Collection.GetByID(ctx, f.id)

	f.mu.Lock()
	if !f.settleLocked(ctx) {
		f.mu.Unlock()
		return ErrUnmounted
	}
	if err != nil {
		f.state = StateError
		f.err = err
		f.mu.Unlock()
		f.Logger.Error("failed to fetch person details", "id", f.id, "error", err)
		f.Notifier.Error("Failed to load person details")
		f.Navigator.Navigate(ListRoute)
		return err
	}
	f.values = validation.NewFormValues(person)
	f.errors = validation.ValidateForm(f.values)
	f.state = StateEditing
	f.mu.Unlock()
	return nil
}

// SetField changes one field and revalidates the form.
func (f *Form) SetField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return ErrNotEditable
	}
	if err := f.values.Set(field, value); err != nil {
		return err
	}
	f.touched[field] = true
	f.errors = validation.ValidateForm(f.values)
	return nil
}

// Snapshot returns the current state.
func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	visible := validation.FieldErrors{}
	for field, msg := range f.errors {
		if f.touched[field] {
			visible[field] = msg
		}
	}
	return FormSnapshot{
		Mode:   f.mode,
		Id:     f.id,
		State:  f.state,
		Values: f.values,
		Errors: visible,
		Valid:  len(f.errors) == 0,
		Err:    f.err,
	}
}

// Submit validates the form and, if every rule holds, creates or updates the person. A
// violation returns a *validation.ValidationError and marks all fields touched. On success the
// user is sent to the list; on failure the form stays editable and the error is shown.
func (f *Form) Submit() error {
	f.mu.Lock()
	if f.state != StateEditing {
		f.mu.Unlock()
		return ErrNotEditable
	}
	for _, field := range validation.FormFields {
		f.touched[field] = true
	}
	f.errors = validation.ValidateForm(f.values)
	if err := f.errors.Err(); err != nil {
		f.mu.Unlock()
		return err
	}
	fields, err := f.values.Fields()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	ctx, err := f.beginLocked()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = StateSubmitting
	f.err = nil
	f.mu.Unlock()

	if f.mode == ModeEdit {
		_, err = f.Collection.Update(ctx, f.id, fields)
	} else {
		_, err = f.Collection.Create(ctx, fields)
	}

	f.mu.Lock()
	if !f.settleLocked(ctx) {
		f.mu.Unlock()
		return ErrUnmounted
	}
	if err != nil {
		f.state = StateEditing
		f.err = err
		f.mu.Unlock()
		f.Logger.Error("failed to save person", "mode", f.mode, "id", f.id, "error", err)
		f.Notifier.Error(saveErrorMessage(err))
		return err
	}
	f.state = StateDone
	f.mu.Unlock()

	if f.mode == ModeEdit {
		f.Notifier.Success("Person updated successfully")
	} else {
		f.Notifier.Success("Person created successfully")
	}
	f.Navigator.Navigate(ListRoute)
	return nil
}

// Cancel abandons the form and returns to the list.
func (f *Form) Cancel() {
	f.Navigator.Navigate(ListRoute)
}

// saveErrorMessage prefers the message the service sent along with the failure.
func saveErrorMessage(err error) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) && transportErr.Message != "" {
		return "Error: " + transportErr.Message
	}
	return "Failed to save person"
}

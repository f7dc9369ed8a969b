// Package views contains the controllers behind the list, form and details views of the person
// collection. A controller owns the state of one view, issues the collection calls the view
// needs and reports the outcome through the Navigator and Notifier it was built with. Rendering
// is left to the caller.
package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

var (
	// ErrNotMounted is returned by actions on a view that was never mounted.
	ErrNotMounted = errors.New("view is not mounted")
	// ErrUnmounted is returned when the view was unmounted before a request finished. The
	// result of that request has been discarded.
	ErrUnmounted = errors.New("view was unmounted")
	// ErrBusy is returned when an action is started while the view still waits for a request.
	ErrBusy = errors.New("view is waiting for a request")
	// ErrDeclined is returned by delete actions when the user did not confirm.
	ErrDeclined = errors.New("deletion not confirmed")
	// ErrNotEditable is returned by form actions outside of the editing state.
	ErrNotEditable = errors.New("form is not editable")
)

// Collection is the set of calls a view may issue against the person collection.
// *client.Client implements it.
type Collection interface {
	ListAll(ctx context.Context) ([]model.Person, error)
	GetByID(ctx context.Context, id int64) (model.Person, error)
	Create(ctx context.Context, fields model.PersonFields) (model.Person, error)
	Update(ctx context.Context, id int64, fields model.PersonFields) (model.Person, error)
	Delete(ctx context.Context, id int64) error
}

// Navigator switches to another view.
type Navigator interface {
	Navigate(route Route)
}

// Notifier shows transient notifications.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Deps bundles what every controller needs. A nil Logger discards the diagnostic trace.
type Deps struct {
	Collection Collection
	Navigator  Navigator
	Notifier   Notifier
	Confirmer  Confirmer
	Logger     *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// State is the lifecycle state of a view.
type State int

const (
	StateLoading State = iota
	StateReady
	StateEditing
	StateSubmitting
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Route addresses a view.
type Route string

// RouteKind tells which view a route addresses.
type RouteKind int

const (
	RouteUnknown RouteKind = iota
	RouteList
	RouteCreate
	RouteEdit
	RouteView
)

const (
	ListRoute   Route = "/"
	CreateRoute Route = "/create"
)

// EditRoute addresses the form in edit mode for the given person.
func EditRoute(id int64) Route {
	return Route(fmt.Sprintf("/edit/%d", id))
}

// ViewRoute addresses the details view of the given person.
func ViewRoute(id int64) Route {
	return Route(fmt.Sprintf("/view/%d", id))
}

// Parse splits the route into the addressed view and, for edit and view routes, the person id.
func (r Route) Parse() (RouteKind, int64) {
	switch r {
	case ListRoute, "":
		return RouteList, 0
	case CreateRoute:
		return RouteCreate, 0
	}
	for prefix, kind := range map[string]RouteKind{"/edit/": RouteEdit, "/view/": RouteView} {
		if rest, ok := strings.CutPrefix(string(r), prefix); ok {
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil || id <= 0 {
				return RouteUnknown, 0
			}
			return kind, id
		}
	}
	return RouteUnknown, 0
}

// Package console runs the person views in a terminal. It mounts the view a route addresses,
// prints its state, and answers the navigation, notification and confirmation requests of the
// controllers.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gitlab.com/dirk.krummacker/persons/internal/views"
)

// mounted is the part of a controller the console needs to switch views.
type mounted interface {
	Mount(ctx context.Context) error
	Unmount()
}

// Console is the Navigator, Notifier and Confirmer of the views. It shows one view at a time.
type Console struct {
	ctx        context.Context
	collection views.Collection
	in         *bufio.Reader
	out        io.Writer
	assumeYes  bool
	logger     *slog.Logger

	route   views.Route
	current mounted
	err     error
}

// Option customizes a Console.
type Option func(*Console)

// WithInput replaces stdin as the source of confirmation answers.
func WithInput(in io.Reader) Option {
	return func(c *Console) {
		c.in = bufio.NewReader(in)
	}
}

// WithOutput replaces stdout as the destination of everything the console prints.
func WithOutput(out io.Writer) Option {
	return func(c *Console) {
		c.out = out
	}
}

// WithAssumeYes answers every confirmation with yes without asking.
func WithAssumeYes(assumeYes bool) Option {
	return func(c *Console) {
		c.assumeYes = assumeYes
	}
}

// WithLogger sets the logger for the diagnostic trace of the console and its views.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New returns a console whose views work on the given collection. Views are mounted with ctx,
// so cancelling it aborts all requests.
func New(ctx context.Context, collection views.Collection, opts ...Option) *Console {
	c := &Console{
		ctx:        ctx,
		collection: collection,
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) deps() views.Deps {
	return views.Deps{
		Collection: c.collection,
		Navigator:  c,
		Notifier:   c,
		Confirmer:  c,
		Logger:     c.logger,
	}
}

// Open shows the view the route addresses and returns the error of its initial load, if any.
// When that load sent the user elsewhere, the other view is shown as well.
func (c *Console) Open(route views.Route) error {
	c.err = nil
	c.Navigate(route)
	return c.err
}

// Navigate unmounts the current view, then mounts and prints the one the route addresses.
func (c *Console) Navigate(route views.Route) {
	c.logger.Debug("navigate", "from", c.route, "to", route)
	if c.current != nil {
		c.current.Unmount()
	}

	kind, id := route.Parse()
	var next mounted
	switch kind {
	case views.RouteList:
		next = views.NewList(c.deps())
	case views.RouteCreate:
		next = views.NewCreateForm(c.deps())
	case views.RouteEdit:
		next = views.NewEditForm(c.deps(), id)
	case views.RouteView:
		next = views.NewDetails(c.deps(), id)
	default:
		c.current, c.route = nil, ""
		c.err = fmt.Errorf("unknown route %q", route)
		return
	}
	c.current, c.route = next, route

	if err := next.Mount(c.ctx); err != nil {
		c.err = err
	}
	// Mounting may have navigated on; the view it left is not shown anymore.
	if c.current != next {
		return
	}
	c.render()
}

// Route returns the route of the current view.
func (c *Console) Route() views.Route {
	return c.route
}

// List returns the current view if it is the list.
func (c *Console) List() (*views.List, bool) {
	l, ok := c.current.(*views.List)
	return l, ok
}

// Form returns the current view if it is the form.
func (c *Console) Form() (*views.Form, bool) {
	f, ok := c.current.(*views.Form)
	return f, ok
}

// Details returns the current view if it is the details view.
func (c *Console) Details() (*views.Details, bool) {
	d, ok := c.current.(*views.Details)
	return d, ok
}

// Close unmounts the current view.
func (c *Console) Close() {
	if c.current != nil {
		c.current.Unmount()
		c.current = nil
	}
}

func (c *Console) render() {
	switch v := c.current.(type) {
	case *views.List:
		c.RenderList(v.Snapshot())
	case *views.Details:
		c.RenderDetails(v.Snapshot())
	case *views.Form:
		c.RenderForm(v.Snapshot())
	}
}

// Success prints a success notification.
func (c *Console) Success(message string) {
	fmt.Fprintln(c.out, "✓ "+message)
}

// Error prints an error notification.
func (c *Console) Error(message string) {
	fmt.Fprintln(c.out, "✗ "+message)
}

// Confirm asks the question and waits for the answer. Anything but y or yes is a no, and so is
// the end of the input.
func (c *Console) Confirm(prompt string) bool {
	if c.assumeYes {
		fmt.Fprintln(c.out, prompt+" [y/N] y")
		return true
	}
	fmt.Fprint(c.out, prompt+" [y/N] ")
	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

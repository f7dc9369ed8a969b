package console

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"gitlab.com/dirk.krummacker/persons/internal/views"
	"gitlab.com/dirk.krummacker/persons/pkg/validation"
)

// labels are the captions of the form fields.
var labels = map[string]string{
	validation.FieldFirstName:   "First Name",
	validation.FieldLastName:    "Last Name",
	validation.FieldEmail:       "Email",
	validation.FieldPhoneNumber: "Phone Number",
	validation.FieldAge:         "Age",
	validation.FieldDescription: "Description",
}

const missing = "-"

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return missing
	}
	return t.Format(layout)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

func (c *Console) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

// RenderList prints the table of persons, or the zero state with the way to create the first
// person.
func (c *Console) RenderList(s views.ListSnapshot) {
	switch {
	case s.State == views.StateLoading:
		fmt.Fprintln(c.out, "Loading persons...")
		return
	case s.State == views.StateError:
		fmt.Fprintln(c.out, "Run `persons list` to try again.")
		return
	case s.Empty():
		fmt.Fprintln(c.out, "No persons found.")
		fmt.Fprintln(c.out, "Get started by adding a person: persons create --first-name ... --last-name ... --email ...")
		return
	}

	w := c.table()
	fmt.Fprintln(w, "ID\tFULL NAME\tEMAIL\tCREATED AT")
	for _, p := range s.Persons {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Id, p.FullName(), p.Email, formatTime(p.CreatedAt, time.DateOnly))
	}
	w.Flush()
}

// RenderDetails prints all fields of one person.
func (c *Console) RenderDetails(s views.DetailsSnapshot) {
	if s.State != views.StateReady {
		return
	}
	p := s.Person
	phone, age := missing, missing
	if p.PhoneNumber != nil {
		phone = orMissing(*p.PhoneNumber)
	}
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}

	fmt.Fprintln(c.out, p.FullName())
	w := c.table()
	fmt.Fprintf(w, "ID\t%d\n", p.Id)
	fmt.Fprintf(w, "Email\t%s\n", p.Email)
	fmt.Fprintf(w, "Phone Number\t%s\n", phone)
	fmt.Fprintf(w, "Age\t%s\n", age)
	fmt.Fprintf(w, "Description\t%s\n", orMissing(p.Description))
	fmt.Fprintf(w, "Created At\t%s\n", formatTime(p.CreatedAt, time.DateTime))
	fmt.Fprintf(w, "Updated At\t%s\n", formatTime(p.UpdatedAt, time.DateTime))
	w.Flush()
}

// RenderForm prints the form values together with the messages of violated fields.
func (c *Console) RenderForm(s views.FormSnapshot) {
	if s.State == views.StateLoading || s.State == views.StateError {
		return
	}
	if s.Mode == views.ModeEdit {
		fmt.Fprintf(c.out, "Edit Person %d\n", s.Id)
	} else {
		fmt.Fprintln(c.out, "Create Person")
	}

	w := c.table()
	for _, field := range validation.FormFields {
		value, _ := s.Values.Get(field)
		fmt.Fprintf(w, "%s\t%s\n", labels[field], orMissing(value))
		if msg, ok := s.Errors[field]; ok {
			fmt.Fprintf(w, "\t! %s\n", msg)
		}
	}
	w.Flush()
}

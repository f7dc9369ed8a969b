// Package validation holds the field rules a person has to satisfy before it is submitted. The
// same rules guard the form of the front-end and the request bodies of the service.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// MaxDescriptionLength is the largest number of characters allowed in a description.
const MaxDescriptionLength = 500

// validate is shared by all callers. validator.Validate caches struct metadata and is safe for
// concurrent use.
var validate *validator.Validate

// messages maps a field and the failed rule to the text shown next to the field.
var messages = map[string]map[string]string{
	"firstName": {
		"required": "First Name is required",
	},
	"lastName": {
		"required": "Last Name is required",
	},
	"email": {
		"required": "Email is required",
		"email":    "Invalid email address",
	},
	"age": {
		"gt":          "Age must be a positive whole number",
		"positiveint": "Age must be a positive whole number",
	},
	"description": {
		"max": fmt.Sprintf("Description must be %d characters or less", MaxDescriptionLength),
	},
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("positiveint", isPositiveInt); err != nil {
		panic(err)
	}
}

// isPositiveInt accepts strings that spell a whole number greater than zero.
func isPositiveInt(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n > 0
}

// FieldErrors maps the JSON name of a field to the message describing its violation. A field
// that satisfies all its rules has no entry.
type FieldErrors map[string]string

// Fields returns the names of all violated fields in alphabetical order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Err returns a *ValidationError when at least one field is violated, nil otherwise.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidationError reports that a submission was rejected before it was sent.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields.Fields() {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateForm checks the raw form input.
func ValidateForm(values FormValues) FieldErrors {
	return check(values)
}

// ValidateFields checks a typed payload, as it arrives in a create or update request.
func ValidateFields(fields model.PersonFields) FieldErrors {
	return check(fields)
}

func check(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return FieldErrors{}
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		// Only reachable when s is not a struct.
		panic(err)
	}
	result := make(FieldErrors, len(violations))
	for _, v := range violations {
		if _, seen := result[v.Field()]; seen {
			continue
		}
		result[v.Field()] = message(v.Field(), v.Tag())
	}
	return result
}

func message(field, tag string) string {
	if msg, ok := messages[field][tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

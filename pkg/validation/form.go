package validation

import (
	"fmt"
	"strconv"

	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// Names of the form fields. They match the JSON names of the person.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldAge         = "age"
	FieldDescription = "description"
)

// FormFields lists all form fields in the order the form shows them.
var FormFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhoneNumber,
	FieldAge,
	FieldDescription,
}

// FormValues holds the form input exactly as typed. Optional fields are empty strings when left
// blank.
type FormValues struct {
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Age         string `json:"age"         validate:"omitempty,positiveint"`
	Description string `json:"description" validate:"max=500"`
}

// NewFormValues seeds form input from an existing person.
func NewFormValues(p model.Person) FormValues {
	values := FormValues{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Description: p.Description,
	}
	if p.PhoneNumber != nil {
		values.PhoneNumber = *p.PhoneNumber
	}
	if p.Age != nil {
		values.Age = strconv.Itoa(*p.Age)
	}
	return values
}

// Get returns the value of the named field.
func (v FormValues) Get(field string) (string, error) {
	switch field {
	case FieldFirstName:
		return v.FirstName, nil
	case FieldLastName:
		return v.LastName, nil
	case FieldEmail:
		return v.Email, nil
	case FieldPhoneNumber:
		return v.PhoneNumber, nil
	case FieldAge:
		return v.Age, nil
	case FieldDescription:
		return v.Description, nil
	}
	return "", fmt.Errorf("unknown form field %q", field)
}

// Set replaces the value of the named field.
func (v *FormValues) Set(field, value string) error {
	switch field {
	case FieldFirstName:
		v.FirstName = value
	case FieldLastName:
		v.LastName = value
	case FieldEmail:
		v.Email = value
	case FieldPhoneNumber:
		v.PhoneNumber = value
	case FieldAge:
		v.Age = value
	case FieldDescription:
		v.Description = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

// Fields converts validated form input into the payload of a create or update request. Blank
// optional fields become absent.
func (v FormValues) Fields() (model.PersonFields, error) {
	fields := model.PersonFields{
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Email:       v.Email,
		Description: v.Description,
	}
	if v.PhoneNumber != "" {
		phone := v.PhoneNumber
		fields.PhoneNumber = &phone
	}
	if v.Age != "" {
		age, err := strconv.Atoi(v.Age)
		if err != nil {
			return model.PersonFields{}, fmt.Errorf("age %q: %w", v.Age, err)
		}
		fields.Age = &age
	}
	return fields, nil
}

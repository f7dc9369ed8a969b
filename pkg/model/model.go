package model

import "time"

// Person is the data structure for one contact record of the collection.
// The Id and both timestamps are assigned by the service and never submitted by a client.
type Person struct {
	Id          int64      `json:"id"                    db:"id"`
	FirstName   string     `json:"firstName"             db:"first_name"`
	LastName    string     `json:"lastName"              db:"last_name"`
	Email       string     `json:"email"                 db:"email"`
	PhoneNumber *string    `json:"phoneNumber,omitempty" db:"phone_number"`
	Age         *int       `json:"age,omitempty"         db:"age"`
	Description string     `json:"description"           db:"description"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"   db:"created_at"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"   db:"updated_at"`
}

// PersonFields are the editable fields of a person. This is the payload of create and update
// requests, so it has no room for the Id or the timestamps.
type PersonFields struct {
	FirstName   string  `json:"firstName"             validate:"required"`
	LastName    string  `json:"lastName"              validate:"required"`
	Email       string  `json:"email"                 validate:"required,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Age         *int    `json:"age,omitempty"         validate:"omitempty,gt=0"`
	Description string  `json:"description"           validate:"max=500"`
}

// Fields returns the editable part of the person.
func (p Person) Fields() PersonFields {
	return PersonFields{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Age:         p.Age,
		Description: p.Description,
	}
}

// FullName joins first and last name the way the list view shows them.
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// WithFields returns a copy of the person whose editable fields are replaced by the given ones.
// Id and timestamps are kept.
func (p Person) WithFields(f PersonFields) Person {
	p.FirstName = f.FirstName
	p.LastName = f.LastName
	p.Email = f.Email
	p.PhoneNumber = f.PhoneNumber
	p.Age = f.Age
	p.Description = f.Description
	return p
}

package client

import (
	"fmt"
)

// TransportError reports a failed call: the request could not be sent, the service answered
// with a non-success status, or the response could not be decoded.
type TransportError struct {
	// Op names the failed operation, e.g. "list persons".
	Op string
	// StatusCode is the HTTP status of the response, 0 if there was none.
	StatusCode int
	// Message is the message the service put into the error body, if any.
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that the service does not know a person with the given id.
type NotFoundError struct {
	Id int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("person %d not found", e.Id)
}

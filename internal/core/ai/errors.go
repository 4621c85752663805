package ai

import (
	"errors"
	"net/http"
)

// Error is a failed pipeline run. Message is what callers show to users:
// a localized sentence for 400s, the upstream error text verbatim for 500s.
type Error struct {
	Status  int
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(op, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Op: op, Message: message}
}

func upstream(op string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Op: op, Message: err.Error(), Err: err}
}

// StatusOf returns the HTTP status for err: the Status of an *Error in its
// chain, otherwise 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

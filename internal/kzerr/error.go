// Package kzerr has the error types shared by the klimozawr packages.
package kzerr

import (
	"fmt"
)

// Error is an error that has a kind and an optional cause.
//
// errors.Is matches both of the kind and the cause chain.
type Error struct {
	kind    error
	cause   error
	message string
}

// New creates a new Error.
// The message is formatted by fmt.Sprintf, and the cause message is appended to it.
func New(kind, cause error, format string, args ...interface{}) Error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		if msg != "" {
			msg += ": "
		}
		msg += cause.Error()
	}

	return Error{
		kind:    kind,
		cause:   cause,
		message: msg,
	}
}

// Error implements error interface.
func (e Error) Error() string {
	return e.message
}

// Kind returns the kind of this error.
func (e Error) Kind() error {
	return e.kind
}

// Unwrap implements for errors.Unwrap.
func (e Error) Unwrap() error {
	return e.cause
}

// Is implements for errors.Is.
func (e Error) Is(err error) bool {
	return e.kind == err
}

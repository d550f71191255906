package service

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrStore      = errors.New("store failure")
)

// Error is a domain failure with a message safe to show to the user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// MaxNameLength caps usernames and recipe, item and contact names, in runes.
// Flashes echo them and live in the session cookie.
const MaxNameLength = 100

func tooLong(s string) bool { return utf8.RuneCountInString(s) > MaxNameLength }

func nameTooLong(field string) error {
	return validationError(fmt.Sprintf("%s must be at most %d characters!", field, MaxNameLength))
}

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func notFoundError(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func storeError(op string, err error) error {
	return &Error{Kind: ErrStore, Message: "Something went wrong. Please try again.", Err: fmt.Errorf("%s: %w", op, err)}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

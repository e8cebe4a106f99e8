package service

import (
	"errors"
	"fmt"
)

// Validation failures surfaced to the client as 400s. The texts are the
// user-facing messages, so they keep their display casing.
var (
	ErrRosterFull    = errors.New("Too many feeders - remove someone before adding a new one")
	ErrDuplicateName = errors.New("Feeder name already exists")
	ErrEmptyName     = errors.New("Feeder name is required")
	ErrNoSelection   = errors.New("No feeders selected")
)

// NotFoundError means the summoner name has no upstream profile.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Name)
}

// IsValidation reports whether err is one of the synchronous validation
// failures, checked before any external call is made.
func IsValidation(err error) bool {
	var notFound *NotFoundError
	return errors.Is(err, ErrRosterFull) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNoSelection) ||
		errors.As(err, &notFound)
}

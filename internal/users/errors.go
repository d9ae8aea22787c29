package users

import "errors"

// ErrForbidden is returned when an actor lacks the role or ownership an
// operation requires.
var ErrForbidden = errors.New("forbidden")

package commands

import "fmt"

// UserError is an expected command outcome delivered to the player: bad
// input, a locked door, a name that doesn't exist. It is not a system
// failure and is never logged as one.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// UserErrorf creates a user-facing error with formatting.
func UserErrorf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

package command

import (
	"errors"
	"fmt"
)

// Value conversion errors.
var (
	// ErrNullValue is returned when a scalar position holds a null bulk
	// string.
	ErrNullValue = errors.New("command: null bulk string is not a value")

	// ErrWrongValueType is returned when a scalar position holds an
	// error string or an array.
	ErrWrongValueType = errors.New("command: wrong value type")

	// ErrInvalidExpiry is returned when the argument after an "ex" or
	// "px" token is not an unsigned decimal.
	ErrInvalidExpiry = errors.New("command: invalid expiry")
)

// ArgCountError reports a command invoked with the wrong number of
// arguments. Required is the command's arity, Provided the number of
// arguments actually given.
type ArgCountError struct {
	Required int
	Provided int
}

func (e *ArgCountError) Error() string {
	return fmt.Sprintf("command: requires at least %d args but only %d were provided", e.Required, e.Provided)
}

// UnknownCommandError reports a command name outside the supported set.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("command: unknown command %q", e.Name)
}

// UnknownOptionError reports a trailing SET token that is neither an
// expiry nor an existence modifier.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("command: unrecognized option %q", e.Option)
}

package pagi

import (
	"fmt"
	"strings"
)

// InputError is returned before any browser action when a required
// argument is missing.
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("missing required argument: --%s", e.Field)
}

// LaunchError is returned when the browser engine could not be started.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch browser: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a page control could not be located with
// any of its selectors before the wait window expired.
type NotFoundError struct {
	Control   string
	Selectors []string
	Err       error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found (tried %s)", e.Control, strings.Join(e.Selectors, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

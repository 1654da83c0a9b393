// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fault separates errors caused by user input (malformed locale configuration,
disallowed directive arguments, duplicate pages) from system errors (I/O failures,
unexpected parser failures).

Both kinds propagate as ordinary errors. Callers tell them apart with [IsUser] and
[IsSystem], and the CLI maps them to distinct exit codes with [ExitCode].
*/
package fault

import (
	"errors"
	"fmt"
)

// Exit codes returned by [ExitCode].
const (
	ExitOK     = 0
	ExitSystem = 1
	ExitUser   = 2
)

var (
	// ErrUser matches every user error via errors.Is.
	ErrUser = errors.New("user error")

	// ErrSystem matches every system error via errors.Is.
	ErrSystem = errors.New("system error")
)

// UserError is an error caused by invalid input that the user can fix.
type UserError struct {
	msg   string
	cause error
}

// User creates a UserError with a formatted message.
func User(format string, args ...any) *UserError {
	return &UserError{msg: fmt.Sprintf(format, args...)}
}

// UserWrap creates a UserError with a formatted message and an underlying cause.
func UserWrap(cause error, format string, args ...any) *UserError {
	return &UserError{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *UserError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}

	return e.msg
}

func (e *UserError) Unwrap() error { return e.cause }

// Is reports true for [ErrUser].
func (e *UserError) Is(target error) bool { return target == ErrUser }

// SystemError wraps an unexpected failure that is not the user's fault.
type SystemError struct {
	msg   string
	cause error
}

// System wraps cause as a SystemError.
func System(cause error, format string, args ...any) *SystemError {
	return &SystemError{msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *SystemError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}

	return e.msg
}

func (e *SystemError) Unwrap() error { return e.cause }

// Is reports true for [ErrSystem].
func (e *SystemError) Is(target error) bool { return target == ErrSystem }

// IsUser reports whether err is, or wraps, a user error.
func IsUser(err error) bool {
	return errors.Is(err, ErrUser)
}

// IsSystem reports whether err is, or wraps, a system error.
func IsSystem(err error) bool {
	return errors.Is(err, ErrSystem)
}

// ExitCode maps err to a process exit code.
// Errors that are neither user nor system errors are treated as system errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUser(err):
		return ExitUser
	default:
		return ExitSystem
	}
}

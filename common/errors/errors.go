package errors

import (
	"errors"
)

// ExitCodeError pairs an error with the process exit code it should produce.
type ExitCodeError struct {
	code ExitCode
	error
}

func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}

func (e *ExitCodeError) Unwrap() error {
	return e.error
}

// ExitCodeOf finds the first ExitCodeError in err's chain.
// A nil err is 0; any other error without a code is 1.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return 0
	}
	var ece *ExitCodeError
	if errors.As(err, &ece) {
		return ece.code
	}
	return 1
}

package interposer

import (
	"errors"
	"fmt"
	"syscall"
)

// ExecError is the error returned by every override that fails. The
// underlying error code of the real exec call is preserved verbatim and
// reachable through errors.Is / errors.As.
type ExecError struct {
	// Op is the overridden entry point that failed.
	Op string

	// Path is the path or program name the caller supplied.
	Path string

	// Err is the underlying cause, normally a syscall.Errno.
	Err error
}

// Error returns the error message.
func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Errno returns the underlying error code, or zero when the cause carries
// none.
func (e *ExecError) Errno() syscall.Errno {
	return Errno(e.Err)
}

// Errno extracts the error code from an error chain. It returns zero for
// a nil error or a chain without an error code.
func Errno(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}

func execError(op, path string, errno syscall.Errno) *ExecError {
	return &ExecError{Op: op, Path: path, Err: errno}
}

package xrtcore

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// Error is a driver-layer failure carrying a POSIX errno, the Go rendering
// of the error objects the driver raises. Backends return it (usually
// wrapped with more context by the callers in aie and xcl) so that the
// C-style shim can recover an errno with Code.
type Error struct {
	Errno syscall.Errno
	Msg   string
}

// New returns an Error with the given errno and message, annotated with a
// stack trace.
func New(errno syscall.Errno, msg string) error {
	return errors.WithStack(&Error{Errno: errno, Msg: msg})
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(errno syscall.Errno, format string, args ...any) error {
	return errors.WithStack(&Error{Errno: errno, Msg: fmt.Sprintf(format, args...)})
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Errno.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Msg, e.Errno.Error())
}

// Code extracts the errno from err, looking through any wrapping applied
// on the way up. It returns 0 when err is nil or carries no errno --
// callers that must produce an errno for every failure (package xcl) map
// that case to a generic code themselves.
func Code(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Errno
	}
	return 0
}

package xcl

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/xrtcore"
)

// Errno translates an error returned by this package into a C-style
// errno. Driver failures carry their own code; anything else -- including
// internal table corruption -- maps to EIO. A nil error is 0.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if code := xrtcore.Code(err); code != 0 {
		return code
	}
	return unix.EIO
}

// fail reports err through the runtime message log and returns it, the
// shim-level equivalent of logging an exception before turning it into a
// return code.
func fail(err error) error {
	xrtcore.Send(xrtcore.SeverityError, "XRT", err.Error())
	return err
}

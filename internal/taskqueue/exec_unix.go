//go:build unix

package taskqueue

import (
	"os"
	"syscall"
)

// ExecInPlace replaces the current process image with the given invocation.
// argv must include the executable as its first element. On success it
// never returns; the new program's exit code becomes the process's exit
// code.
func ExecInPlace(executable string, argv []string) error {
	return syscall.Exec(executable, argv, os.Environ())
}

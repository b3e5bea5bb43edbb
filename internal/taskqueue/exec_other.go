//go:build !unix

package taskqueue

import "errors"

// ExecInPlace is unavailable on platforms without an exec primitive; the
// caller diagnoses the error and fails the run.
func ExecInPlace(executable string, argv []string) error {
	return errors.New("in-place execution is not supported on this platform")
}

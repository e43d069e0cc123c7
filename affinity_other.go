//go:build !linux && !windows

package coroexec

import "errors"

// setThreadAffinity has no portable implementation outside Linux/Windows in
// golang.org/x/sys (FreeBSD's cpuset_setaffinity is not wrapped there); the
// caller logs this as a warning rather than treating it as fatal.
func setThreadAffinity(cpus []int) error {
	return errors.New("coroexec: thread affinity is not supported on this platform")
}

//go:build windows

package coroexec

import "golang.org/x/sys/windows"

var procSetThreadAffinityMask = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadAffinityMask")

// setThreadAffinity pins the calling OS thread (which must already be
// locked via runtime.LockOSThread) to the given CPU indices, via
// SetThreadAffinityMask. Grounded on ice::set_thread_affinity
// (original_source/src/ice/utility.hpp); golang.org/x/sys/windows does not
// wrap this API directly, so it is invoked via the package's
// NewLazySystemDLL/NewProc mechanism, the idiomatic way x/sys/windows
// callers reach unwrapped kernel32 entry points.
func setThreadAffinity(cpus []int) error {
	var mask uintptr
	for _, cpu := range cpus {
		mask |= uintptr(1) << uint(cpu)
	}
	r1, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if r1 == 0 {
		return err
	}
	return nil
}

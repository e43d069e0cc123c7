//go:build linux

package coroexec

import "golang.org/x/sys/unix"

// setThreadAffinity pins the calling OS thread (which must already be
// locked via runtime.LockOSThread) to the given CPU indices, via
// sched_setaffinity. Grounded on ice::set_thread_affinity
// (original_source/src/ice/utility.hpp), using golang.org/x/sys/unix's
// CPUSet in place of the C++ cpu_set_t.
func setThreadAffinity(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}

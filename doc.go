// Package coroexec is a minimal user-space coroutine execution framework.
//
// Three tightly-coupled subsystems make up the core:
//
//   - Context: a single-consumer cooperative executor. Work items
//     (continuations) arrive from any goroutine through a lock-free,
//     LIFO intake, and drain into exactly one goroutine at a time —
//     the one currently inside Run.
//   - Schedule / ScheduleOn: the suspension point that hands a
//     continuation to a target Context, short-circuiting to an inline
//     call when the caller is already running on that target.
//   - Service: a portable reactor over one OS I/O completion
//     primitive (IOCP on Windows, epoll on Linux, kqueue on Darwin and
//     FreeBSD),
//     with a reliable external Stop.
//
// A Task never suspends implicitly; it only yields at explicit calls to
// Schedule/ScheduleOn or by registering an IOEvent with a Service. Ordering
// within one Context's intake is LIFO per drained batch, by design — this
// bounds drain latency rather than providing FIFO fairness.
//
// Ancillary pieces — the tagged ErrorCode taxonomy, structured logging,
// thread affinity, and the Sync rendezvous used to bridge a task's eventual
// result to a blocking caller — are collaborators, not part of the core
// scheduling algorithm, but ship alongside it since a complete program
// needs them.
package coroexec

package coroexec

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a fire-and-forget continuation. It must not leak panics past its
// own boundary; Context recovers and logs them instead (see safeExecute).
type Task func()

// scheduleEvent is a one-shot node threaded into a Context's intake. It is
// exclusively owned by its caller until pushed, at which point the intake
// borrows it until the consumer drains and invokes it.
type scheduleEvent struct {
	next atomic.Pointer[scheduleEvent]
	fn   Task
}

// Context is a single-consumer cooperative executor: a lock-free MPSC
// intake drains into exactly one goroutine at a time, and that goroutine
// is recognized by IsCurrent without taking a lock.
//
// Grounded on ice::context (original_source/src/ice/context.hpp): the
// intake is a CAS-push / exchange-drain LIFO stack, and Run sleeps on a
// condition variable with a trivially-true predicate, rechecking the head
// explicitly after every wake (DESIGN.md, "Open Question decisions" — this
// semantic must be reproduced exactly, not replaced with a predicate that
// inspects the head under the mutex).
type Context struct {
	head atomic.Pointer[scheduleEvent]

	stopped atomic.Bool
	state   atomicRunState

	mu sync.Mutex
	cv *sync.Cond

	goroutineID atomic.Uint64

	logger   Logger
	affinity []int
}

// ContextOption configures a Context at construction.
type ContextOption interface {
	applyContext(*Context)
}

type contextOptionFunc func(*Context)

func (f contextOptionFunc) applyContext(c *Context) { f(c) }

// WithContextLogger overrides the logger used for this Context's panic
// recovery diagnostics. The default is the process-wide logger (SetLogger).
func WithContextLogger(logger Logger) ContextOption {
	return contextOptionFunc(func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithContextAffinity pins Run's goroutine to the given OS CPU indices, via
// runtime.LockOSThread plus the platform affinity syscall (SPEC_FULL §5.1).
// Best-effort: failures are logged, not fatal.
func WithContextAffinity(cpus ...int) ContextOption {
	return contextOptionFunc(func(c *Context) {
		c.affinity = append([]int(nil), cpus...)
	})
}

// NewContext constructs a Context. It does not start running until Run is
// called.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{logger: currentLogger()}
	c.cv = sync.NewCond(&c.mu)
	for _, opt := range opts {
		if opt != nil {
			opt.applyContext(c)
		}
	}
	return c
}

// Run blocks the calling goroutine as the consumer until Stop is observed
// with an empty intake. At most one goroutine may call Run at a time; that
// goroutine becomes "the context's goroutine" for the duration of the call
// (IsCurrent answers true for it, and only it, until Run returns).
func (c *Context) Run() error {
	if !c.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrContextAlreadyRunning
	}
	defer c.state.Store(stateTerminated)

	if len(c.affinity) > 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := setThreadAffinity(c.affinity); err != nil {
			c.log(LevelWarn, "context", "thread affinity", err)
		}
	}

	c.goroutineID.Store(goroutineID())
	defer c.goroutineID.Store(0)

	c.mu.Lock()
	for {
		head := c.head.Swap(nil)
		for head == nil {
			if c.stopped.Load() {
				c.mu.Unlock()
				return nil
			}
			c.cv.Wait()
			head = c.head.Swap(nil)
		}
		c.mu.Unlock()

		for head != nil {
			next := head.next.Load()
			c.safeExecute(head.fn)
			head = next
		}

		c.mu.Lock()
	}
}

// IsCurrent reports whether the calling goroutine is currently executing
// inside Run for this Context.
func (c *Context) IsCurrent() bool {
	id := c.goroutineID.Load()
	return id != 0 && id == goroutineID()
}

// Stop sets the stop flag and wakes the consumer. Idempotent; safe from any
// goroutine, including one resumed by this Context. Stop itself does not
// walk or clear the intake: Run keeps draining batches and checks the stop
// flag only when it finds the intake empty, and events pushed after Run has
// returned are never invoked (DESIGN.md, "Open Question decisions").
func (c *Context) Stop() {
	c.stopped.Store(true)
	c.cv.Broadcast()
}

// push adds ev to the intake (CAS loop, LIFO) and wakes the consumer. Safe
// from any goroutine; never blocks.
func (c *Context) push(ev *scheduleEvent) {
	head := c.head.Load()
	for {
		ev.next.Store(head)
		if c.head.CompareAndSwap(head, ev) {
			break
		}
		head = c.head.Load()
	}
	c.cv.Signal()
}

func (c *Context) safeExecute(fn Task) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log(LevelError, "context", "task panicked", &PanicError{Value: r})
		}
	}()
	fn()
}

func (c *Context) log(level Level, category, message string, err error) {
	logger := c.logger
	if logger == nil {
		logger = currentLogger()
	}
	logger.Log(Entry{Level: level, Category: category, Message: message, Err: err})
}

// goroutineID returns the calling goroutine's numeric ID, parsed from the
// runtime stack trace header. Grounded on the teacher's getGoroutineID
// (eventloop/loop.go), the same technique used there to implement
// isLoopThread without a dedicated TLS facility, since Go has none.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

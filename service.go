package coroexec

import (
	"errors"
	"unsafe"
)

// ErrNilIOEvent is returned by RegisterIOEvent when passed a nil event.
var ErrNilIOEvent = errors.New("coroexec: nil IOEvent")

// IOFilter selects which readiness condition an IOEvent is armed for.
type IOFilter int

const (
	IOFilterRead IOFilter = iota
	IOFilterWrite
)

// IOEvent is a subclassable I/O completion node, grounded on
// SPEC_FULL §3 ("IOEvent"): a capability pair whose memory address
// the kernel hands back on completion.
//
//   - Suspend arms the operation against the OS primitive; it returns true
//     if the operation is genuinely pending (the caller should wait for a
//     completion), or false if it finished immediately.
//   - Resume is invoked by the reactor's wait loop when a completion names
//     this event; it returns true if the operation is now truly done, or
//     false to have the reactor call Suspend again to continue a partial
//     operation (the rearm protocol).
type IOEvent interface {
	Suspend() bool
	Resume() bool
}

// ioHandle is the carrier object actually registered with the OS
// completion primitive; its address (not the IOEvent interface value's) is
// what the kernel returns on completion, recovered via unsafe.Pointer. Each
// platform file (poller_linux.go, poller_kqueue.go, poller_windows.go)
// defines the concrete layout — on Windows, embedding the platform
// overlapped struct as the first field so the kernel can write into it
// directly; on Linux/Darwin/FreeBSD, a plain wrapper, since epoll/kqueue
// user-data is an opaque pointer with no required header.
//
// reactor is the platform-specific half of Service: one concrete
// implementation per build-tagged file (poller_linux.go, poller_kqueue.go
// covering both Darwin and FreeBSD, poller_windows.go), each grounded on
// ice::service (original_source/src/ice/service.hpp) for its own OS
// primitive.
type reactor interface {
	// wait blocks for one batch of completions (batchSize entries at
	// most) and returns the recovered ioHandle pointers. A nil entry
	// marks the stop sentinel (SPEC_FULL §5.3 — the distinguishing mark
	// is the absence of an associated event object).
	wait(batchSize int) ([]unsafe.Pointer, error)
	register(h *ioHandle, fd uintptr, filter IOFilter) error
	stop()
	close() error
}

// Service is a portable reactor wrapping one OS completion primitive
// (IOCP / epoll / kqueue). A single Service is intended to be driven by one
// goroutine at a time via Run.
type Service struct {
	r      reactor
	state  atomicRunState
	logger Logger
}

// ServiceOption configures a Service at construction.
type ServiceOption interface {
	applyService(*serviceOptions)
}

type serviceOptions struct {
	logger Logger
}

type serviceOptionFunc func(*serviceOptions)

func (f serviceOptionFunc) applyService(o *serviceOptions) { f(o) }

// WithServiceLogger overrides the logger used for this Service's
// diagnostics. The default is the process-wide logger (SetLogger).
func WithServiceLogger(logger Logger) ServiceOption {
	return serviceOptionFunc(func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	})
}

// NewService constructs the OS completion primitive and any auxiliary wake
// primitive. It may fail with a platform error (ErrorCode, CategoryNative).
func NewService(opts ...ServiceOption) (*Service, error) {
	cfg := serviceOptions{logger: currentLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt.applyService(&cfg)
		}
	}
	r, err := newReactor()
	if err != nil {
		return nil, err
	}
	return &Service{r: r, logger: cfg.logger}, nil
}

// defaultBatchSize is used by Run when batchSize <= 0, matching the
// original's default event_buffer_size.
const defaultBatchSize = 256

// Run blocks in a wait loop, dispatching completions back to their
// registered IOEvent, until Stop is observed or a fatal wait error occurs.
// A single Service is intended to be driven by one goroutine at a time.
func (s *Service) Run(batchSize int) error {
	if !s.state.CompareAndSwap(stateIdle, stateRunning) {
		return ErrServiceAlreadyRunning
	}
	defer s.state.Store(stateTerminated)

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for {
		entries, err := s.r.wait(batchSize)
		if err != nil {
			return err
		}

		interrupted := false
		for _, p := range entries {
			if p == nil {
				interrupted = true
				continue
			}
			h := (*ioHandle)(p)
			s.dispatch(h)
		}
		if interrupted {
			return nil
		}
	}
}

func (s *Service) dispatch(h *ioHandle) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Log(Entry{Level: LevelError, Category: "service", Message: "io event panicked", Err: &PanicError{Value: r}})
		}
	}()
	if !h.event.Resume() {
		h.event.Suspend()
	}
}

// RegisterIOEvent arms ev against the OS primitive for fd, under filter.
// The address of the ioHandle it allocates to carry ev is what Run's wait
// loop will receive back from the kernel on completion.
func (s *Service) RegisterIOEvent(ev IOEvent, fd uintptr, filter IOFilter) error {
	if ev == nil {
		return ErrNilIOEvent
	}
	h := &ioHandle{event: ev}
	return s.r.register(h, fd, filter)
}

// Stop posts a sentinel that causes the wait loop to observe an interrupt
// and exit after finishing its current batch. Idempotent; safe from any
// goroutine.
func (s *Service) Stop() {
	s.r.stop()
}

// Close releases the OS resources backing the Service. Run must not be
// called again afterward.
func (s *Service) Close() error {
	return s.r.close()
}

//go:build linux

package coroexec

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioHandle is the carrier registered with epoll; its address is stashed
// into the epoll_data union and recovered on completion.
type ioHandle struct {
	event IOEvent
}

// epollReactor implements reactor over epoll, with a secondary eventfd used
// as the external wake (SPEC_FULL §5.3 / original_source service.hpp): its
// watch is toggled writable+one-shot on Stop, producing a completion whose
// recovered pointer is nil (it was never registered with a data payload),
// matching the "absence of an associated event object" stop mark.
type epollReactor struct {
	epfd   int
	wakeFd int
	closer closer
}

func newReactor() (reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, NativeError(uint32(err.(unix.Errno)))
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, NativeError(uint32(err.(unix.Errno)))
	}
	ev := unix.EpollEvent{Events: unix.EPOLLONESHOT}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		_ = unix.Close(wakeFd)
		_ = unix.Close(epfd)
		return nil, NativeError(uint32(err.(unix.Errno)))
	}
	r := &epollReactor{epfd: epfd, wakeFd: wakeFd}
	r.closer = newCloser(func() error {
		_ = unix.Close(r.wakeFd)
		return unix.Close(r.epfd)
	})
	return r, nil
}

// storeEpollPtr stashes h's address in the epoll_data union, using the
// Fd/Pad field pair as raw storage for the pointer-sized value.
func storeEpollPtr(ev *unix.EpollEvent, h *ioHandle) {
	*(*uintptr)(unsafe.Pointer(&ev.Fd)) = uintptr(unsafe.Pointer(h))
}

func loadEpollPtr(ev *unix.EpollEvent) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&ev.Fd))
}

// register arms fd with epoll. EPOLLONESHOT disables reporting after one
// completion without removing fd from the interest list, so a rearm (the
// two-phase Suspend/Resume protocol calling register again after a partial
// operation) must use EPOLL_CTL_MOD, not EPOLL_CTL_ADD — ADD on an
// already-registered fd fails with EEXIST. register doesn't track whether
// fd was already added, so it always tries ADD first and falls back to MOD
// on EEXIST, covering both the first registration and every rearm with one
// code path.
func (r *epollReactor) register(h *ioHandle, fd uintptr, filter IOFilter) error {
	ev := unix.EpollEvent{Events: unix.EPOLLONESHOT}
	switch filter {
	case IOFilterWrite:
		ev.Events |= unix.EPOLLOUT
	default:
		ev.Events |= unix.EPOLLIN
	}
	storeEpollPtr(&ev, h)
	err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev)
	if err == unix.EEXIST {
		err = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev)
	}
	if err != nil {
		return NativeError(uint32(err.(unix.Errno)))
	}
	return nil
}

func (r *epollReactor) wait(batchSize int) ([]unsafe.Pointer, error) {
	events := make([]unix.EpollEvent, batchSize)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, NativeError(uint32(err.(unix.Errno)))
		}
		out := make([]unsafe.Pointer, 0, n)
		for i := 0; i < n; i++ {
			p := loadEpollPtr(&events[i])
			out = append(out, p) // nil for the wake fd (never had a payload stored)
		}
		return out, nil
	}
}

func (r *epollReactor) stop() {
	ev := unix.EpollEvent{Events: unix.EPOLLOUT | unix.EPOLLONESHOT}
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, r.wakeFd, &ev)
}

func (r *epollReactor) close() error {
	return r.closer.Close()
}

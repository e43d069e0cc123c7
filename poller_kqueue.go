//go:build darwin || freebsd

package coroexec

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioHandle is the carrier registered with kqueue; its address is stored as
// the kevent's Udata and recovered on completion.
type ioHandle struct {
	event IOEvent
}

// kqueueReactor implements reactor over kqueue, shared between Darwin and
// FreeBSD (spec.md §1/§6 names FreeBSD explicitly; the two platforms' kqueue
// ABI and golang.org/x/sys/unix bindings are identical for everything this
// reactor touches — Kqueue, Kevent, Kevent_t, EVFILT_USER, NOTE_TRIGGER,
// EV_ADD/EV_CLEAR/EV_ONESHOT), with a pre-registered EVFILT_USER filter used
// as the external wake (SPEC_FULL §5.3 / original_source service.hpp): Stop
// triggers it via NOTE_TRIGGER, which surfaces as a completion with
// Udata == nil (the stop mark).
type kqueueReactor struct {
	kq     int
	closer closer
}

const wakeIdent = 0

func newReactor() (reactor, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, NativeError(uint32(err.(unix.Errno)))
	}
	changes := []unix.Kevent_t{{
		Ident:  wakeIdent,
		Filter: unix.EVFILT_USER,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}}
	if _, err := unix.Kevent(kq, changes, nil, nil); err != nil {
		_ = unix.Close(kq)
		return nil, NativeError(uint32(err.(unix.Errno)))
	}
	r := &kqueueReactor{kq: kq}
	r.closer = newCloser(func() error { return unix.Close(r.kq) })
	return r, nil
}

func (r *kqueueReactor) register(h *ioHandle, fd uintptr, filter IOFilter) error {
	kf := int16(unix.EVFILT_READ)
	if filter == IOFilterWrite {
		kf = int16(unix.EVFILT_WRITE)
	}
	change := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: kf,
		Flags:  unix.EV_ADD | unix.EV_ONESHOT,
		Udata:  (*byte)(unsafe.Pointer(h)),
	}
	if _, err := unix.Kevent(r.kq, []unix.Kevent_t{change}, nil, nil); err != nil {
		return NativeError(uint32(err.(unix.Errno)))
	}
	return nil
}

func (r *kqueueReactor) wait(batchSize int) ([]unsafe.Pointer, error) {
	events := make([]unix.Kevent_t, batchSize)
	for {
		n, err := unix.Kevent(r.kq, nil, events, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, NativeError(uint32(err.(unix.Errno)))
		}
		out := make([]unsafe.Pointer, 0, n)
		for i := 0; i < n; i++ {
			if events[i].Ident == wakeIdent && events[i].Filter == unix.EVFILT_USER {
				out = append(out, nil)
				continue
			}
			out = append(out, unsafe.Pointer(events[i].Udata))
		}
		return out, nil
	}
}

func (r *kqueueReactor) stop() {
	change := unix.Kevent_t{
		Ident:  wakeIdent,
		Filter: unix.EVFILT_USER,
		Fflags: unix.NOTE_TRIGGER,
	}
	_, _ = unix.Kevent(r.kq, []unix.Kevent_t{change}, nil, nil)
}

func (r *kqueueReactor) close() error {
	return r.closer.Close()
}

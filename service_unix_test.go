//go:build !windows

package coroexec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// pipeReadEvent drives a real fd through Service's rearm protocol: Suspend
// arms (or rearms) the read side of a pipe with the reactor, and Resume
// reads whatever is available, reporting "done" only once the full message
// has been assembled — forcing at least one Resume-returns-false/Suspend
// round trip for a short write followed by the rest.
type pipeReadEvent struct {
	svc  *Service
	fd   uintptr
	buf  []byte
	read int
	done chan bool
}

func (e *pipeReadEvent) Suspend() bool {
	if err := e.svc.RegisterIOEvent(e, e.fd, IOFilterRead); err != nil {
		panic(err)
	}
	return true
}

func (e *pipeReadEvent) Resume() bool {
	n, err := unix.Read(int(e.fd), e.buf[e.read:])
	if err != nil && err != unix.EAGAIN {
		panic(err)
	}
	e.read += n
	complete := e.read >= len(e.buf)
	e.done <- complete
	return complete
}

// Spec §4.3's rearm protocol: Suspend arms the operation and reports
// whether it is genuinely pending; on completion Resume reads the result
// and reports whether the operation is truly done, and if not the reactor
// calls Suspend again to continue a partial operation — all without
// allocating a new event object.
func TestService_IOEventSuspendThenResume(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	r, w := fds[0], fds[1]
	defer func() { _ = unix.Close(r) }()
	defer func() { _ = unix.Close(w) }()
	require.NoError(t, unix.SetNonblock(r, true))
	require.NoError(t, unix.SetNonblock(w, true))

	svc, err := NewService()
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	want := []byte("helloworld")
	ev := &pipeReadEvent{svc: svc, fd: uintptr(r), buf: make([]byte, len(want)), done: make(chan bool, 2)}

	require.True(t, ev.Suspend(), "Suspend arms the fd and reports the read as pending")

	runDone := make(chan error, 1)
	go func() { runDone <- svc.Run(0) }()

	_, err = unix.Write(w, want[:4])
	require.NoError(t, err)

	select {
	case complete := <-ev.done:
		assert.False(t, complete, "a partial read must not be reported done")
	case <-time.After(2 * time.Second):
		t.Fatal("first Resume did not fire")
	}

	_, err = unix.Write(w, want[4:])
	require.NoError(t, err)

	select {
	case complete := <-ev.done:
		assert.True(t, complete, "the full read must be reported done")
	case <-time.After(2 * time.Second):
		t.Fatal("second Resume did not fire")
	}

	assert.Equal(t, want, ev.buf)

	svc.Stop()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

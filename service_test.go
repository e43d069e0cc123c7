package coroexec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Scenario 5: service.run() returns only after stop(), within a bounded
// wait; multiple stop() calls are idempotent.
func TestService_RunReturnsAfterStop(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	done := make(chan error, 1)
	go func() { done <- svc.Run(0) }()

	// give Run a moment to enter its wait call before stopping, so the
	// stop sentinel is observed rather than raced with start-up.
	time.Sleep(10 * time.Millisecond)
	svc.Stop()
	svc.Stop() // idempotent

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestService_RunTwiceRejected(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	done := make(chan error, 1)
	go func() { done <- svc.Run(0) }()
	time.Sleep(10 * time.Millisecond)

	assert := require.New(t)
	assert.Equal(ErrServiceAlreadyRunning, svc.Run(0))

	svc.Stop()
	<-done
}

func TestService_RegisterNilEventRejected(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	require.ErrorIs(t, svc.RegisterIOEvent(nil, 0, IOFilterRead), ErrNilIOEvent)
}

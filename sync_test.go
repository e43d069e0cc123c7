package coroexec

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 6 / Scenario 6: Get blocks until resolved, then returns exactly
// that value; calling after readiness never blocks.
func TestSync_BlocksUntilResolved(t *testing.T) {
	s := NewSync[int]()

	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	var err error
	go func() {
		defer wg.Done()
		got, err = s.Get()
	}()

	time.Sleep(10 * time.Millisecond)
	s.Resolve(42)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, 42, got)

	// Get after readiness never blocks.
	got2, err2 := s.Get()
	require.NoError(t, err2)
	assert.Equal(t, 42, got2)
}

func TestSync_RejectSurfacesError(t *testing.T) {
	s := NewSync[int]()
	sentinel := errors.New("task failed")

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Reject(sentinel)
	}()
	<-done

	_, err := s.Get()
	assert.ErrorIs(t, err, sentinel)
}

func TestSync_ResolveAfterRejectIsNoOp(t *testing.T) {
	s := NewSync[int]()
	sentinel := errors.New("first")
	s.Reject(sentinel)
	s.Resolve(7)

	v, err := s.Get()
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, v)
}

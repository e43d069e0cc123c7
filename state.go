package coroexec

import "sync/atomic"

// runState is the lifecycle of a Context or Service consumer loop. Unlike
// the original, which tracks only a boolean stop flag, this adds a
// "running" state so a second concurrent Run call is rejected rather than
// silently racing — an ambient safety net, not part of the core contract.
// Run leaves the state at terminated when it returns, so a later Run call on
// the same Context or Service is rejected as well.
type runState uint32

const (
	stateIdle runState = iota
	stateRunning
	stateTerminated
)

// atomicRunState is a cache-line padded atomic wrapper, following the
// FastState idiom used throughout the teacher package for hot,
// frequently-polled state.
type atomicRunState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func (s *atomicRunState) Load() runState { return runState(s.v.Load()) }

func (s *atomicRunState) Store(v runState) { s.v.Store(uint32(v)) }

func (s *atomicRunState) CompareAndSwap(old, new_ runState) bool {
	return s.v.CompareAndSwap(uint32(old), uint32(new_))
}

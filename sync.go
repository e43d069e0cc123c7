package coroexec

import (
	"sync"
	"sync/atomic"
)

// Sync is a one-shot rendezvous between a resumable producer and a blocking
// consumer: single-producer, single-consumer, Get is called at most once.
// Grounded on SPEC_FULL §3/§5.4 ("Sync[T]"), rendered as a Go generic type
// in the teacher's promise/ToChannel idiom (eventloop/promise.go), but
// trimmed to the spec's single-shot contract — no chaining, no combinators.
type Sync[T any] struct {
	mu    sync.Mutex
	cv    *sync.Cond
	ready atomic.Bool
	value T
	err   error
}

// NewSync constructs an unresolved Sync[T].
func NewSync[T any]() *Sync[T] {
	s := &Sync[T]{}
	s.cv = sync.NewCond(&s.mu)
	return s
}

// Resolve stores v and marks the rendezvous ready. Calling Resolve or
// Reject more than once on the same Sync is a caller bug; only the first
// call has any effect.
func (s *Sync[T]) Resolve(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return
	}
	s.value = v
	s.ready.Store(true)
	s.cv.Broadcast()
}

// Reject marks the rendezvous ready with a terminal error instead of a
// value, surfaced by Get.
func (s *Sync[T]) Reject(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return
	}
	s.err = err
	s.ready.Store(true)
	s.cv.Broadcast()
}

// Get blocks until the producer has resolved or rejected, then returns
// exactly that value or error. Calling Get after readiness never blocks.
func (s *Sync[T]) Get() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.ready.Load() {
		s.cv.Wait()
	}
	return s.value, s.err
}

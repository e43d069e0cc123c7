package coroexec

import "sync"

// closer is a RAII-style handle wrapper guarding a teardown function so it
// runs at most once, even when Close is reached from multiple paths (an
// explicit Close call racing a poll error, for instance). Grounded on the
// teacher's closeOnce sync.Once / closeFDs() pattern (eventloop/loop.go).
type closer struct {
	once sync.Once
	fn   func() error
	err  error
}

// newCloser wraps fn so repeated calls to Close are idempotent; only the
// first call invokes fn, and every call observes its result.
func newCloser(fn func() error) closer {
	return closer{fn: fn}
}

// Close runs the wrapped teardown exactly once and returns its result,
// including to callers that arrive after the first call.
func (c *closer) Close() error {
	c.once.Do(func() {
		if c.fn != nil {
			c.err = c.fn()
		}
	})
	return c.err
}

package coroexec

// Schedule parks fn and hands its resumption to the Context c: it implements
// the suspension point described in SPEC_FULL §5.2, rendered in
// continuation-passing style since Go has no native awaitable.
//
// Ready policy: if always is false and the calling goroutine is already
// running inside c's consumer loop (c.IsCurrent()), fn runs inline, on the
// caller's goroutine, with no intake round trip. Otherwise fn is wrapped in
// a scheduleEvent and pushed into c's intake, to be invoked later by
// whichever goroutine is executing c.Run.
//
// With always=true, the ready fast-path never applies: the call always
// yields through the intake, even when already local. This is used to force
// a fair rescheduling point.
func (c *Context) Schedule(always bool, fn Task) {
	ScheduleOn(c, always, fn)
}

// ScheduleOn migrates fn's continuation onto target's consumer loop (or
// invokes it inline if always is false and target is already current). It
// is the free-function form of Schedule, for the common case of scheduling
// from a goroutine that has no Context of its own (e.g. a driver or
// benchmark thread).
func ScheduleOn(target *Context, always bool, fn Task) {
	if fn == nil {
		return
	}
	if !always && target.IsCurrent() {
		target.safeExecute(fn)
		return
	}
	target.push(&scheduleEvent{fn: fn})
}

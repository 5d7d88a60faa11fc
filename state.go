package shard

// stateTag is the tag of the future-state union described in spec.md §3.
type stateTag int

const (
	statePending stateTag = iota
	stateValue
	stateException
	stateConsumed
)

func (t stateTag) String() string {
	switch t {
	case statePending:
		return "pending"
	case stateValue:
		return "value"
	case stateException:
		return "exception"
	case stateConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// core is the single, shared future-state cell for a Promise[T]/Future[T]
// pair. spec.md §3 describes the value slot as moving between three homes
// (promise, future, attached continuation); in Go, a GC'd language with no
// destructive move, the idiomatic realization is a single heap cell shared
// by pointer between the promise and its (at most one) future, with the
// "attached continuation" modelled as a callback plus owning reactor rather
// than a third home for the payload. This preserves the invariant spec.md
// actually cares about — "exactly one owner of the pending value" — without
// emulating C++ move semantics that have no Go equivalent.
type core[T any] struct {
	tag   stateTag
	value T
	err   error

	// cont, reactor: the attached continuation and the reactor it must be
	// scheduled on once the state transitions out of pending. Release
	// always happens at urgent priority (spec.md §4.E: "value fulfilment
	// that was synchronously produced during the current task").
	cont    Task
	reactor *Reactor

	// inspected marks whether an exception outcome was ever read by a
	// caller (Get, ThenWrapped, HandleException, ...). A state destroyed
	// (here: explicitly discarded) while exception && !inspected is
	// reported to the reactor's FailedFutureSink (spec.md §7, "leaked
	// failure").
	inspected bool

	// futureLive is set when GetFuture detaches the future side. Nothing
	// clears or reads it; the leaked-failure check does not depend on it.
	futureLive bool
}

func newCore[T any](r *Reactor) *core[T] {
	return &core[T]{tag: statePending, reactor: r}
}

// setValue transitions pending -> value. It is the only legal way to
// deposit a value (spec.md §3 invariants).
func (c *core[T]) setValue(v T) error {
	if c.tag != statePending {
		return ErrPromiseAlreadySet
	}
	c.value = v
	c.tag = stateValue
	c.scheduleContinuation()
	return nil
}

// setException transitions pending -> exception.
func (c *core[T]) setException(err error) error {
	if c.tag != statePending {
		return ErrPromiseAlreadySet
	}
	c.err = err
	c.tag = stateException
	c.scheduleContinuation()
	return nil
}

// scheduleContinuation hands an attached continuation to the reactor at
// urgent priority (spec.md §4.E). Per spec.md §4.B, this happens
// synchronously with respect to the fulfilling statement: by the time
// setValue/setException returns, the continuation is enqueued and
// observable.
func (c *core[T]) scheduleContinuation() {
	if c.cont == nil {
		return
	}
	cont := c.cont
	c.cont = nil
	if c.reactor != nil {
		c.reactor.schedule(cont, true)
	}
}

// attach registers a continuation to run when this state is fulfilled. It is
// a programming error to attach twice (spec.md §3: "at most one attached
// continuation"). If the state is already fulfilled, the continuation is
// scheduled immediately instead of being stored, at urgent priority for the
// same reason scheduleContinuation is: it is causally tied to whatever task
// is attaching it (spec.md §4.E).
func (c *core[T]) attach(t Task) error {
	if c.cont != nil {
		return ErrContinuationAlreadyAttached
	}
	if c.tag == statePending {
		c.cont = t
		return nil
	}
	// Already fulfilled: hand off immediately (still "scheduled", never
	// run inline from here — inlining is an explicit Future-API decision,
	// see chain's fast path in continuation.go).
	if c.reactor != nil {
		c.reactor.schedule(t, true)
	}
	return nil
}

func (c *core[T]) available() bool {
	return c.tag == stateValue || c.tag == stateException
}

func (c *core[T]) failed() bool { return c.tag == stateException }

// get extracts the value or error, transitioning value/exception -> consumed.
func (c *core[T]) get() (T, error) {
	var zero T
	switch c.tag {
	case stateValue:
		v := c.value
		c.value = zero
		c.tag = stateConsumed
		return v, nil
	case stateException:
		err := c.err
		c.err = nil
		c.tag = stateConsumed
		c.inspected = true
		return zero, err
	case stateConsumed:
		return zero, ErrStateConsumed
	default:
		return zero, ErrNotReady
	}
}

// ignore drops the state silently, marking any exception as inspected so it
// is never reported as leaked (spec.md §4.B).
func (c *core[T]) ignore() {
	c.inspected = true
	c.tag = stateConsumed
}

// discardPromiseSide and discardFutureSide are the explicit stand-in for
// C++ destruction (spec.md §3's
// "destroying a future whose state is exception and unread must be
// reported"; "destroying a pending promise with an attached continuation
// becomes exception(broken_promise)"). Go has no deterministic destructors,
// so callers that want these semantics call Promise.Discard()/
// Future.Discard() explicitly; see promise.go/future.go.
func (c *core[T]) discardPromiseSide(label string) {
	if c.tag == statePending {
		_ = c.setException(&BrokenPromiseError{Label: label})
		return
	}
	c.reportIfLeaked()
}

func (c *core[T]) discardFutureSide() {
	c.reportIfLeaked()
}

func (c *core[T]) reportIfLeaked() {
	if c.tag == stateException && !c.inspected {
		c.inspected = true
		if c.reactor != nil && c.reactor.failedFutureSink != nil {
			c.reactor.failedFutureSink.ReportFailedFuture(c.err)
		}
	}
}

package shard

import (
	"errors"
	"fmt"
	"os"
)

// Future is the read-side handle of a deferred computation (spec.md §3).
// It wraps the single shared core; once you hand a Future to an operator
// (Then, Finally, ForwardTo, ...) treat the original value as consumed —
// operators do not support being called twice on the same Future, mirroring
// the "moved-from" invariant spec.md §3 assigns to the C++ original.
type Future[T any] struct {
	c *core[T]
}

// ReadyFuture returns an already-completed future over v, with no reactor
// attached — equivalent to make_ready_future<T>(v). Chaining off a
// ReadyFuture always takes the Then/ThenWrapped/... fast path, since a
// future with no reactor never reports NeedPreempt.
func ReadyFuture[T any](v T) Future[T] {
	c := &core[T]{tag: stateValue, value: v}
	return Future[T]{c: c}
}

// ExceptionFuture returns an already-failed future, equivalent to
// make_exception_future<T>(err).
func ExceptionFuture[T any](err error) Future[T] {
	c := &core[T]{tag: stateException, err: err}
	return Future[T]{c: c}
}

// Available reports whether the future has a value or exception ready.
func (f Future[T]) Available() bool { return f.c.available() }

// Failed reports whether the future completed exceptionally. It is only
// meaningful once Available() is true.
func (f Future[T]) Failed() bool { return f.c.failed() }

// Get extracts the value or returns the error, transitioning the state to
// consumed. It requires the future to be Available(); calling it on a
// pending future returns ErrNotReady.
func (f Future[T]) Get() (T, error) { return f.c.get() }

// Ignore drops the future's state silently; if it held an unread exception,
// Ignore suppresses the leaked-failure report that Discard would otherwise
// raise (spec.md §4.B).
func (f Future[T]) Ignore() { f.c.ignore() }

// Discard is the explicit analogue of destroying a C++ future: if the
// state is an exception that was never inspected (Get/ThenWrapped/
// HandleException/...), it is reported to the owning reactor's
// FailedFutureSink (spec.md §7 "leaked failure"). Call this instead of
// simply letting a failed future drop out of scope so leaks stay visible.
func (f Future[T]) Discard() { f.c.discardFutureSide() }

// ForwardTo splices this future's eventual outcome into p in place of
// attaching a user continuation (spec.md §4.D). It consumes f: do not read
// or chain off f again afterward.
func (f Future[T]) ForwardTo(p *Promise[T]) {
	forward := func(v T, err error) {
		if err != nil {
			_ = p.SetException(err)
			return
		}
		_ = p.SetValue(v)
	}
	onComplete(f, forward)
}

// HandleException invokes fn with the exception when f fails and uses its
// result as the new outcome; a successful f passes its value through
// unchanged (spec.md §4.D).
func (f Future[T]) HandleException(fn func(error) (T, error)) Future[T] {
	return chain[T, T](f, func(c *core[T], down *Promise[T]) {
		if !c.failed() {
			v, _ := c.get()
			_ = down.SetValue(v)
			return
		}
		_, err := c.get()
		v, err2 := fn(err)
		if err2 != nil {
			_ = down.SetException(err2)
			return
		}
		_ = down.SetValue(v)
	})
}

// DiscardResult converts f into a no-value future that preserves failure,
// equivalent to discard_result().
func (f Future[T]) DiscardResult() Future[struct{}] {
	return chain[T, struct{}](f, func(c *core[T], down *Promise[struct{}]) {
		if c.failed() {
			_, err := c.get()
			_ = down.SetException(err)
			return
		}
		_, _ = c.get()
		_ = down.SetValue(struct{}{})
	})
}

// OrTerminateHandler is invoked by OrTerminate when f failed. It defaults to
// printing the error and exiting the process (spec.md §4.D, §7: "the only
// user-facing abort paths are explicit or_terminate and invariant
// violations"). Tests override it to observe termination without actually
// exiting the test binary.
var OrTerminateHandler = func(err error) {
	fmt.Fprintln(os.Stderr, "fatal: unhandled future exception:", err)
	os.Exit(1)
}

// OrTerminate aborts the process (via OrTerminateHandler) if f fails, and
// otherwise discards the value. The returned future is only ever fulfilled
// along the success path: a real OrTerminateHandler never returns, so
// fulfilling the failure path would be unreachable anyway.
func (f Future[T]) OrTerminate() Future[struct{}] {
	return chain[T, struct{}](f, func(c *core[T], down *Promise[struct{}]) {
		if c.failed() {
			_, err := c.get()
			OrTerminateHandler(err)
			return
		}
		_, _ = c.get()
		_ = down.SetValue(struct{}{})
	})
}

// Finally invokes fn exactly once after f completes, regardless of outcome.
// The original outcome is preserved unless fn itself returns an error, in
// which case the new failure is chained with the original as its cause via
// FinallyError (spec.md §4.D, §9).
func (f Future[T]) Finally(fn func() error) Future[T] {
	return chain[T, T](f, func(c *core[T], down *Promise[T]) {
		var (
			v       T
			origErr error
		)
		if c.failed() {
			_, origErr = c.get()
		} else {
			v, _ = c.get()
		}
		if ferr := fn(); ferr != nil {
			_ = down.SetException(&FinallyError{Cause: ferr, Original: origErr})
			return
		}
		if origErr != nil {
			_ = down.SetException(origErr)
			return
		}
		_ = down.SetValue(v)
	})
}

// HandleExceptionAs invokes fn only when f failed with an exception whose
// type is (or wraps, via errors.As) E; any other exception propagates
// unchanged (spec.md §4.D handle_exception_type<E>).
func HandleExceptionAs[T any, E error](f Future[T], fn func(E) (T, error)) Future[T] {
	return chain[T, T](f, func(c *core[T], down *Promise[T]) {
		if !c.failed() {
			v, _ := c.get()
			_ = down.SetValue(v)
			return
		}
		_, err := c.get()
		var typed E
		if errors.As(err, &typed) {
			v, err2 := fn(typed)
			if err2 != nil {
				_ = down.SetException(err2)
				return
			}
			_ = down.SetValue(v)
			return
		}
		_ = down.SetException(err)
	})
}

package shard

// Promise is the write-side handle of a future/promise pair (spec.md §3/
// §4.B). A Promise is created bound to a Reactor (or to no reactor at all,
// for already-resolved work built with ReadyFuture/ExceptionFuture); at
// most one Future may be extracted from it via GetFuture.
type Promise[T any] struct {
	c          *core[T]
	futureTook bool
}

// NewPromise creates a pending promise scheduled against r. r may be nil for
// promises that will only ever be fulfilled synchronously before any future
// chaining happens off-reactor (tests, pure value pipelines).
func NewPromise[T any](r *Reactor) *Promise[T] {
	return &Promise[T]{c: newCore[T](r)}
}

// GetFuture detaches the read-side Future bound to this promise. Calling it
// twice is a programming error (spec.md §3: "at most one future"); the
// second call panics, matching the teacher's posture on other invariant
// violations (e.g. options.go's conflicting-option panics).
func (p *Promise[T]) GetFuture() Future[T] {
	if p.futureTook {
		panic("shard: GetFuture called twice on the same promise")
	}
	p.futureTook = true
	p.c.futureLive = true
	return Future[T]{c: p.c}
}

// SetValue fulfils the promise with a value. It fails if the promise is not
// pending.
func (p *Promise[T]) SetValue(v T) error { return p.c.setValue(v) }

// SetException fulfils the promise exceptionally.
func (p *Promise[T]) SetException(err error) error { return p.c.setException(err) }

// Discard is the explicit analogue of destroying a pending C++ promise: if
// the promise is still pending, the future-state becomes an exceptional
// completion of kind broken-promise, whether or not a continuation is
// attached downstream; an attached continuation is then scheduled with that
// failure (spec.md §3, §7). Call it when abandoning a promise you will never
// fulfil — e.g. on a cleanup path that decided the work is no longer
// needed. label is attached to the resulting BrokenPromiseError for
// diagnostics and may be empty.
func (p *Promise[T]) Discard(label string) {
	p.c.discardPromiseSide(label)
}

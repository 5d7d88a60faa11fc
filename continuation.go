package shard

import (
	"reflect"
	"sync"

	"github.com/ygrebnov/shard/pool"
)

// continuation is the Task created by every Future-API operator when the
// fast path (chain, below) isn't available: a task that, once the upstream
// core is fulfilled, applies the operator's logic and deposits the result
// into a freshly created downstream promise (spec.md §3/§4.C).
//
// Rather than hand-writing one Task type per operator (Then, ThenWrapped,
// Finally, ...), every operator builds a continuation around a small
// closure (apply) capturing its own semantics; RunAndDispose supplies the
// one piece of behavior every continuation needs regardless of what apply
// does: panic containment, so a failure inside user code becomes an
// exceptional fulfilment of the downstream promise instead of unwinding the
// scheduler (spec.md §4.A, §7).
type continuation[T, U any] struct {
	upstream *core[T]
	down     *Promise[U]
	apply    func(c *core[T], down *Promise[U])
	pool     pool.Pool
}

// continuationPools holds one pool.Pool per (T, U) instantiation of
// continuation, keyed by its reflect.Type. A continuation's shape depends
// on its two type parameters, so a single untyped pool can't serve every
// instantiation the way ioqueue's Descriptor pool serves one concrete type
// (pool/pool.go) — this registry is the generic analogue, built lazily the
// first time a given (T, U) pair is chained.
var continuationPools sync.Map // reflect.Type -> pool.Pool

func continuationPoolFor[T, U any]() pool.Pool {
	key := reflect.TypeOf((*continuation[T, U])(nil))
	if p, ok := continuationPools.Load(key); ok {
		return p.(pool.Pool)
	}
	p := pool.NewDynamic(func() interface{} { return &continuation[T, U]{} })
	actual, _ := continuationPools.LoadOrStore(key, p)
	return actual.(pool.Pool)
}

func newContinuation[T, U any](upstream *core[T], down *Promise[U], apply func(c *core[T], down *Promise[U])) *continuation[T, U] {
	p := continuationPoolFor[T, U]()
	k := p.Get().(*continuation[T, U])
	k.upstream, k.down, k.apply, k.pool = upstream, down, apply, p
	return k
}

func (k *continuation[T, U]) RunAndDispose() {
	apply, down, c, p := k.apply, k.down, k.upstream, k.pool
	// Release references eagerly; this continuation does not outlive one
	// RunAndDispose call (spec.md §4.A contract).
	k.apply, k.down, k.upstream = nil, nil, nil

	if err := runRecovered(func() { apply(c, down) }); err != nil {
		_ = down.SetException(err)
	}

	// Dispose releases this continuation back to its object pool (spec.md
	// §4.C) rather than leaving it for the collector.
	p.Put(k)
}

// chain implements the Future-API fast path uniformly for every operator in
// future.go/combinators.go: if the upstream is already resolved and the
// owning reactor does not currently need preemption, apply is invoked
// inline and an already-resolved Future[U] is returned with no task ever
// touching the scheduler. Otherwise a continuation is attached and a
// pending Future[U] is returned whose promise the continuation will
// eventually fulfil (spec.md §4.D "Fast-path optimisation").
//
// apply may assume c is always available (value or exception) by the time
// it runs — chain only ever invokes it once that is true. Release is
// always scheduled at urgent priority: by the time a continuation can run
// (either because its upstream just resolved, or because it is attached to
// an already-resolved upstream from within the attaching task), it is
// causally tied to the task currently executing, matching spec.md §4.E's
// reservation of the urgent class for "value fulfilment that was
// synchronously produced during the current task".
func chain[T, U any](f Future[T], apply func(c *core[T], down *Promise[U])) Future[U] {
	down := NewPromise[U](f.c.reactor)

	if f.c.available() && !needsPreempt(f.c) {
		if err := runRecovered(func() { apply(f.c, down) }); err != nil {
			_ = down.SetException(err)
		}
		return down.GetFuture()
	}

	k := newContinuation(f.c, down, apply)
	_ = f.c.attach(k)
	return down.GetFuture()
}

func needsPreempt[T any](c *core[T]) bool {
	if c.reactor == nil {
		return false
	}
	return c.reactor.NeedPreempt()
}

// onComplete runs cb with the eventual (value, error) of f, inline if f is
// already resolved, or via an attached trampoline task otherwise. Unlike
// chain, it does not create a downstream Future — it is the building block
// for fan-in combinators (combinators.go) that aggregate several futures
// into bookkeeping state rather than another Future-API operator chain.
func onComplete[T any](f Future[T], cb func(T, error)) {
	if f.c.available() {
		v, err := f.c.get()
		cb(v, err)
		return
	}
	task := TaskFunc(func() {
		v, err := f.c.get()
		cb(v, err)
	})
	_ = f.c.attach(task)
}

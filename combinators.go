package shard

// Then chains fn after f: if f completes with a value, fn is invoked with
// it exactly once and its result becomes the new future; if f fails, fn is
// never invoked and the exception propagates unchanged (spec.md §4.D, §8).
//
// fn may have any of the three shapes the teacher's task.go dispatches a
// plain function against (a value, a (value, error) pair, or a Future) —
// the same "accept several call signatures, dispatch via a type switch"
// idiom, generalized from task adaptation to continuation adaptation.
// Supported shapes:
//
//	func(T) U
//	func(T) (U, error)
//	func(T) Future[U]
func Then[T, U any](f Future[T], fn any) Future[U] {
	return chain[T, U](f, func(c *core[T], down *Promise[U]) {
		if c.failed() {
			_, err := c.get()
			_ = down.SetException(err)
			return
		}
		v, _ := c.get()
		applyThenFunc(fn, v, down)
	})
}

func applyThenFunc[T, U any](fn any, v T, down *Promise[U]) {
	switch typed := fn.(type) {
	case func(T) U:
		_ = down.SetValue(typed(v))
	case func(T) (U, error):
		r, err := typed(v)
		if err != nil {
			_ = down.SetException(err)
			return
		}
		_ = down.SetValue(r)
	case func(T) Future[U]:
		typed(v).ForwardTo(down)
	default:
		panic("shard: Then: fn must be func(T) U, func(T) (U, error), or func(T) Future[U]")
	}
}

// ThenWrapped always invokes fn, passing the completed Future[T] so fn can
// inspect success or failure itself (spec.md §4.D, §8: "fn is invoked with
// a completed future, never pending"). Supported fn shapes:
//
//	func(Future[T]) U
//	func(Future[T]) (U, error)
//	func(Future[T]) Future[U]
func ThenWrapped[T, U any](f Future[T], fn any) Future[U] {
	return chain[T, U](f, func(c *core[T], down *Promise[U]) {
		wrapped := Future[T]{c: c}
		switch typed := fn.(type) {
		case func(Future[T]) U:
			_ = down.SetValue(typed(wrapped))
		case func(Future[T]) (U, error):
			r, err := typed(wrapped)
			if err != nil {
				_ = down.SetException(err)
				return
			}
			_ = down.SetValue(r)
		case func(Future[T]) Future[U]:
			typed(wrapped).ForwardTo(down)
		default:
			panic("shard: ThenWrapped: fn must be func(Future[T]) U, func(Future[T]) (U, error), or func(Future[T]) Future[U]")
		}
	})
}

// WhenAll waits for every future in futures to complete and resolves with
// their values in input order, or with the first exception observed (ties
// broken by input order), once all have completed. It has no teacher
// analogue in goroutine form — run_all.go fans out across worker
// goroutines and a WaitGroup — but the same fan-in shape is reproduced here
// purely through continuation attachment, since a single shard has no
// concurrency to synchronize (spec.md §5: "no locks are required").
//
// WhenAll must be called from the reactor goroutine that owns r (or with
// r == nil and only already-resolved futures), matching every other
// operator in this package.
func WhenAll[T any](r *Reactor, futures []Future[T]) Future[[]T] {
	down := NewPromise[[]T](r)
	n := len(futures)
	if n == 0 {
		_ = down.SetValue(nil)
		return down.GetFuture()
	}

	results := make([]T, n)
	remaining := n
	var firstErr error

	for i, f := range futures {
		idx := i
		onComplete(f, func(v T, err error) {
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				results[idx] = v
			}
			remaining--
			if remaining == 0 {
				if firstErr != nil {
					_ = down.SetException(firstErr)
					return
				}
				_ = down.SetValue(results)
			}
		})
	}

	return down.GetFuture()
}

// MapFutures applies fn to every item, fanning the resulting futures
// through WhenAll. Grounded in the teacher's Map/RunAll fan-out helpers,
// adapted from per-item goroutines to per-item continuations.
func MapFutures[T, U any](r *Reactor, items []T, fn func(T) Future[U]) Future[[]U] {
	futures := make([]Future[U], len(items))
	for i, it := range items {
		futures[i] = fn(it)
	}
	return WhenAll(r, futures)
}

package pool

// Pool is an interface over a pool of reusable values. ioqueue.Queue uses
// it to recycle *Descriptor allocations across Submit calls, and the root
// package uses it to recycle *continuation[T, U] values across RunAndDispose
// calls, rather than paying a heap allocation per in-flight request or
// continuation.
type Pool interface {
	// Get returns a value from the pool, allocating a new one if none is
	// available.
	Get() interface{}

	// Put returns a value to the pool for reuse.
	Put(interface{})
}

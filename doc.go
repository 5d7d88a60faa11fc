// Package shard implements a single-shard asynchronous execution substrate:
// futures and promises, a cooperative run loop, and a priority-weighted fair
// queue for bounding concurrent I/O admission. It targets one goroutine per
// shard; fan-out across shards is left to the caller.
//
// Core types
//   - Future[T] / Promise[T]: a future is produced exactly once, from its
//     paired promise, and read at most once via Get, HandleException, Then,
//     or one of the other chaining operators.
//   - Reactor: owns the ready queue and drives task execution. Construct one
//     with NewReactor(opts ...Option) and drive it with Run(ctx).
//   - fairqueue.Queue / ioqueue.Queue: admission control for I/O, grounded on
//     a virtual-time fair-share scheduler rather than a fixed worker count.
//
// Defaults
// Unless overridden via Option, a Reactor has:
//   - ShardCount: 1
//   - TaskQuota: 500 microseconds of wall time per drain pass before a
//     preemption request is raised
//   - IOQueues: one queue named "default" with a generous capacity envelope
//
// Panics vs errors
// Conflicting or structurally invalid Option values (e.g. WithShardCount and
// WithCPUSet disagreeing, a non-positive TaskQuota) panic at construction
// time, since no caller could recover from them at run time. Data that can
// only be validated once all options are applied (an I/O queue with zero
// capacity on both axes) surfaces as an error from NewConfig/NewReactor.
package shard

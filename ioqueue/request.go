// Package ioqueue adapts fairqueue.Queue to I/O-shaped requests: each
// submission is costed as a fair_queue_ticket, queued against a named
// priority class, and — once fairqueue dispatches it — handed to a
// caller-supplied completion callback (spec.md §4.G, io_queue.cc). This
// package has no Future/Promise dependency of its own; ygrebnov/shard
// (see ioadapter.go at the module root) is the thin layer that turns its
// callback-based completion into the Future API.
package ioqueue

// Kind distinguishes read and write requests, which io_queue.cc costs
// asymmetrically (writes carry a configurable multiplier relative to
// reads, modelling the usual cost disparity on spinning and flash media).
type Kind int

const (
	Read Kind = iota
	Write
)

// readRequestBaseCount is io_queue::read_request_base_count: the weight and
// per-byte-size unit a read request is costed in, before any multiplier.
const readRequestBaseCount = 1

// Request describes one I/O operation awaiting admission.
type Request struct {
	Kind Kind
	// Len is the request size in bytes, used (alongside Kind) to compute
	// the fair_queue_ticket cost via Config's multipliers.
	Len uint64
}

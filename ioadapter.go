package shard

import "github.com/ygrebnov/shard/ioqueue"

// SubmitIO bridges ioqueue.Queue's callback-based completion to the Future
// API (spec.md §4.G "I/O queue adapter"): it submits req against className,
// and returns a Future that resolves once the eventual ioqueue.Submitter
// calls CompleteWith/Fail on the resulting Descriptor. The returned future
// is scheduled on r like any other continuation, so chaining operators off
// it behave exactly as they would off a CPU-bound Future.
func (r *Reactor) SubmitIO(q *ioqueue.Queue, className string, shares uint32, req ioqueue.Request) Future[uint64] {
	p := NewPromise[uint64](r)
	err := q.Submit(className, shares, req, func(n uint64, err error) {
		if err != nil {
			_ = p.SetException(err)
			return
		}
		_ = p.SetValue(n)
	})
	if err != nil {
		_ = p.SetException(err)
	}
	return p.GetFuture()
}

// ioQueuePoller drives an ioqueue.Queue's dispatch pass whenever the
// reactor's ready queue runs dry, so admitted-but-not-yet-submitted I/O
// keeps moving even with no CPU-bound work pending (spec.md §4.E "External
// work").
type ioQueuePoller struct {
	q *ioqueue.Queue
}

// NewIOQueuePoller wraps q as a Poller suitable for Reactor.RegisterPoller.
func NewIOQueuePoller(q *ioqueue.Queue) Poller { return &ioQueuePoller{q: q} }

func (p *ioQueuePoller) Poll() bool {
	before := p.q.Waiters()
	p.q.DispatchRequests()
	return before != p.q.Waiters()
}

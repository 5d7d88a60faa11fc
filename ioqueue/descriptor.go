package ioqueue

import "github.com/ygrebnov/shard/fairqueue"

// Descriptor tracks one admitted-but-not-yet-completed request (spec.md
// §4.G, io_queue.cc's io_desc_read_write). It is obtained from a Queue's
// internal pool on Submit and returned to it by CompleteWith/Fail; callers
// never construct one directly.
type Descriptor struct {
	queue      *Queue
	ticket     fairqueue.Ticket
	onComplete func(n uint64, err error)
}

func (d *Descriptor) reset() {
	d.queue = nil
	d.ticket = fairqueue.Ticket{}
	d.onComplete = nil
}

// CompleteWith reports a successful completion of n bytes/units, releases
// the request's resource cost back to the fair queue, and returns the
// descriptor to its pool (io_desc_read_write::complete_with).
func (d *Descriptor) CompleteWith(n uint64) {
	d.finish(n, nil)
}

// Fail reports a failed completion, releasing resources the same way
// CompleteWith does (io_desc_read_write::set_exception).
func (d *Descriptor) Fail(err error) {
	d.finish(0, err)
}

func (d *Descriptor) finish(n uint64, err error) {
	q, ticket, cb := d.queue, d.ticket, d.onComplete
	q.fq.NotifyRequestsFinished(ticket)
	q.putDescriptor(d)
	cb(n, err)
}
